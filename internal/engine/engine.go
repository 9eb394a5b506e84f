// Package engine implements the API use-cases on top of the entity store:
// access checks, store calls and activity recording.
package engine

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"teamboard/internal/engine/auth"
	"teamboard/internal/events"
	"teamboard/internal/repo"
)

type Engine struct {
	Repo   *repo.Repo
	Events events.Recorder
	Tokens auth.Tokens
	Now    func() time.Time
	Logger *zap.Logger
}

// New wires an engine around r. Activities and tokens share the engine clock.
func New(r *repo.Repo, jwtSecret string, logger *zap.Logger) Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Engine{
		Repo:   r,
		Events: events.Recorder{Repo: r, Logger: logger},
		Tokens: auth.Tokens{Secret: jwtSecret, TTL: auth.TokenTTL},
		Now:    time.Now,
		Logger: logger,
	}
}

// WithClock returns a copy of e whose activities and tokens use now.
func (e Engine) WithClock(now func() time.Time) Engine {
	e.Now = now
	e.Events.Now = now
	e.Tokens.Now = now
	return e
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) logger() *zap.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return zap.NewNop()
}

var (
	ErrEmailTaken         = errors.New("user already exists")
	ErrRoleNameTaken      = errors.New("role already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// NotFoundError reports a missing record of the named resource.
type NotFoundError struct {
	Resource string
	Message  string
}

func (e NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// ValidationError reports a request that is well-formed but unusable.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func required(field, value string) error {
	if value == "" {
		return ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
