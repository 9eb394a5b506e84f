// Package repo is the in-memory entity store. It owns every collection and id
// counter; nothing else mutates them.
package repo

import (
	"slices"
	"sync"
	"time"

	"teamboard/internal/domain"
)

// Repo holds the six entity collections. The zero value is not usable; build
// one with New and share the pointer.
type Repo struct {
	mu  sync.RWMutex
	now func() time.Time

	users      table[domain.User]
	roles      table[domain.Role]
	campaigns  table[domain.Campaign]
	tasks      table[domain.Task]
	metrics    table[domain.Metric]
	activities table[domain.Activity]

	// metricByUser enforces one metric per user.
	metricByUser map[int64]int64
}

// New returns an empty store. now stamps activity timestamps and task
// completion times; nil means time.Now.
func New(now func() time.Time) *Repo {
	if now == nil {
		now = time.Now
	}
	return &Repo{
		now:          now,
		users:        newTable[domain.User](),
		roles:        newTable[domain.Role](),
		campaigns:    newTable[domain.Campaign](),
		tasks:        newTable[domain.Task](),
		metrics:      newTable[domain.Metric](),
		activities:   newTable[domain.Activity](),
		metricByUser: make(map[int64]int64),
	}
}

// table is an arena of records of one kind: rows by id, ids in insertion
// order and the next id to hand out. Ids are never reused.
type table[T any] struct {
	rows  map[int64]T
	order []int64
	next  int64
}

func newTable[T any]() table[T] {
	return table[T]{rows: make(map[int64]T), next: 1}
}

func (t *table[T]) nextID() int64 {
	id := t.next
	t.next++
	return id
}

func (t *table[T]) insert(id int64, v T) {
	t.rows[id] = v
	t.order = append(t.order, id)
}

func (t *table[T]) get(id int64) (T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) put(id int64, v T) {
	t.rows[id] = v
}

func (t *table[T]) remove(id int64) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	if i := slices.Index(t.order, id); i >= 0 {
		t.order = slices.Delete(t.order, i, i+1)
	}
	return true
}

// each visits rows in insertion order until fn returns false.
func (t *table[T]) each(fn func(T) bool) {
	for _, id := range t.order {
		if !fn(t.rows[id]) {
			return
		}
	}
}

func (t *table[T]) list(keep func(T) bool) []T {
	out := make([]T, 0, len(t.order))
	t.each(func(v T) bool {
		if keep == nil || keep(v) {
			out = append(out, v)
		}
		return true
	})
	return out
}

func (t *table[T]) values() []T {
	return t.list(nil)
}

func (t *table[T]) restore(rows []T, idOf func(T) int64, next int64) {
	t.rows = make(map[int64]T, len(rows))
	t.order = t.order[:0]
	for _, v := range rows {
		t.insert(idOf(v), v)
	}
	slices.Sort(t.order)
	t.next = next
	if n := len(t.order); n > 0 && t.order[n-1] >= t.next {
		t.next = t.order[n-1] + 1
	}
	if t.next < 1 {
		t.next = 1
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return slices.Clone(in)
}

func ptr[T any](v T) *T { return &v }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
