package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"teamboard/internal/config"
	"teamboard/internal/domain"
	"teamboard/internal/repo"
)

const (
	defaultWebhookInterval = 2 * time.Second
	defaultWebhookTimeout  = 5 * time.Second
	defaultWebhookBatch    = 100
)

// WebhookDispatcher polls the activity log and posts new entries to the
// configured hooks. Each hook keeps its own cursor, starting at the newest
// activity when the dispatcher first sees it.
type WebhookDispatcher struct {
	repo     *repo.Repo
	hooks    []config.WebhookConfig
	client   *http.Client
	logger   *zap.Logger
	interval time.Duration

	mu      sync.Mutex
	cursors map[int]int64
}

func NewWebhookDispatcher(r *repo.Repo, hooks []config.WebhookConfig, logger *zap.Logger) *WebhookDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookDispatcher{
		repo:     r,
		hooks:    hooks,
		client:   &http.Client{Timeout: defaultWebhookTimeout},
		logger:   logger,
		interval: defaultWebhookInterval,
		cursors:  make(map[int]int64),
	}
}

// Run dispatches until ctx is cancelled. It returns immediately when no hook
// is active.
func (d *WebhookDispatcher) Run(ctx context.Context) {
	active := 0
	for _, hook := range d.hooks {
		if hook.Active() {
			active++
		}
	}
	if active == 0 {
		return
	}
	d.logger.Info("webhook dispatcher started", zap.Int("hooks", active))
	d.Prime()
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.DispatchAll(ctx)
		}
	}
}

// Prime positions every hook cursor at the newest activity.
func (d *WebhookDispatcher) Prime() {
	for i := range d.hooks {
		d.cursorFor(i)
	}
}

func (d *WebhookDispatcher) DispatchAll(ctx context.Context) {
	for i, hook := range d.hooks {
		if !hook.Active() {
			continue
		}
		d.dispatchWebhook(ctx, i, hook)
	}
}

func (d *WebhookDispatcher) dispatchWebhook(ctx context.Context, idx int, hook config.WebhookConfig) {
	cursor := d.cursorFor(idx)
	activities := d.repo.ActivitiesAfter(cursor, defaultWebhookBatch)
	if len(activities) == 0 {
		return
	}
	filter := newEventFilter(hook.Events)
	for _, a := range activities {
		if !filter.match(a) {
			d.setCursor(idx, a.ID)
			continue
		}
		if err := d.postActivity(ctx, hook, a); err != nil {
			d.logger.Warn("webhook delivery failed",
				zap.String("url", hook.URL),
				zap.Int64("activity_id", a.ID),
				zap.Error(err))
			return
		}
		d.setCursor(idx, a.ID)
	}
}

func (d *WebhookDispatcher) cursorFor(idx int) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cur, ok := d.cursors[idx]; ok {
		return cur
	}
	cur := d.repo.LatestActivityID()
	d.cursors[idx] = cur
	return cur
}

func (d *WebhookDispatcher) setCursor(idx int, value int64) {
	d.mu.Lock()
	d.cursors[idx] = value
	d.mu.Unlock()
}

type webhookPayload struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	Action       string    `json:"action"`
	Timestamp    time.Time `json:"timestamp"`
	ResourceType string    `json:"resourceType,omitempty"`
	ResourceID   *int64    `json:"resourceId,omitempty"`
}

func eventName(a domain.Activity) string {
	if a.ResourceType != nil && *a.ResourceType != "" {
		return *a.ResourceType
	}
	return "activity"
}

func (d *WebhookDispatcher) postActivity(ctx context.Context, hook config.WebhookConfig, a domain.Activity) error {
	body := webhookPayload{
		ID:         a.ID,
		UserID:     a.UserID,
		Action:     a.Action,
		Timestamp:  a.Timestamp,
		ResourceID: a.ResourceID,
	}
	if a.ResourceType != nil {
		body.ResourceType = *a.ResourceType
	}
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	client := d.client
	if hook.TimeoutSeconds > 0 {
		if timeout := time.Duration(hook.TimeoutSeconds) * time.Second; timeout != client.Timeout {
			client = &http.Client{Timeout: timeout}
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Teamboard-Event", eventName(a))
	req.Header.Set("X-Teamboard-Delivery", uuid.NewString())
	if strings.TrimSpace(hook.Secret) != "" {
		req.Header.Set("X-Teamboard-Secret", hook.Secret)
	}
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("status %d: %s", res.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}
	d.logger.Debug("webhook delivered", zap.String("url", hook.URL), zap.Int64("activity_id", a.ID))
	return nil
}

// eventFilter matches an activity by its action text or resource type,
// case-insensitively. An empty filter matches everything.
type eventFilter struct {
	all bool
	set map[string]struct{}
}

func newEventFilter(events []string) eventFilter {
	if len(events) == 0 {
		return eventFilter{all: true}
	}
	set := make(map[string]struct{}, len(events))
	for _, evt := range events {
		key := strings.ToLower(strings.TrimSpace(evt))
		if key == "" {
			continue
		}
		if key == "*" {
			return eventFilter{all: true}
		}
		set[key] = struct{}{}
	}
	return eventFilter{set: set}
}

func (f eventFilter) match(a domain.Activity) bool {
	if f.all {
		return true
	}
	if _, ok := f.set[strings.ToLower(a.Action)]; ok {
		return true
	}
	if a.ResourceType != nil {
		_, ok := f.set[strings.ToLower(*a.ResourceType)]
		return ok
	}
	return false
}
