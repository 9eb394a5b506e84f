package engine

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"teamboard/internal/domain"
	"teamboard/internal/engine/auth"
	"teamboard/internal/events"
)

// RegisterOptions are the parameters of a self-service sign-up.
type RegisterOptions struct {
	Name     string
	Email    string
	Password string
	Role     string
	Avatar   string
}

// Session is a user together with a freshly issued bearer token.
type Session struct {
	User  domain.User
	Token string
}

// UserWithMetrics joins a user with their metric row, if any.
type UserWithMetrics struct {
	User    domain.User
	Metrics *domain.Metric
}

func (e Engine) Register(ctx context.Context, opts RegisterOptions) (Session, error) {
	opts.Name = strings.TrimSpace(opts.Name)
	opts.Email = strings.TrimSpace(opts.Email)
	if err := errors.Join(required("name", opts.Name), required("email", opts.Email), required("password", opts.Password)); err != nil {
		return Session{}, err
	}
	if _, exists := e.Repo.GetUserByEmail(opts.Email); exists {
		return Session{}, ErrEmailTaken
	}
	digest, err := auth.HashPassword(opts.Password)
	if err != nil {
		return Session{}, err
	}
	user, created := e.Repo.CreateUserIfAbsent(domain.UserInput{
		Name:     opts.Name,
		Email:    opts.Email,
		Password: digest,
		Role:     opts.Role,
		Avatar:   opts.Avatar,
	})
	if !created {
		return Session{}, ErrEmailTaken
	}
	e.Events.Record(ctx, user.ID, "User registered", events.ResourceUser, ptr(user.ID))
	token, err := e.Tokens.Issue(principalOf(user))
	if err != nil {
		return Session{}, err
	}
	e.logger().Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", user.Role))
	return Session{User: user, Token: token}, nil
}

// Login verifies the credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (e Engine) Login(ctx context.Context, email, password string) (Session, error) {
	user, ok := e.Repo.GetUserByEmail(strings.TrimSpace(email))
	if !ok || !auth.CheckPassword(password, user.Password) {
		return Session{}, ErrInvalidCredentials
	}
	token, err := e.Tokens.Issue(principalOf(user))
	if err != nil {
		return Session{}, err
	}
	e.Events.Record(ctx, user.ID, "User logged in", events.ResourceUser, ptr(user.ID))
	return Session{User: user, Token: token}, nil
}

// Authenticate resolves a bearer token to its principal.
func (e Engine) Authenticate(token string) (auth.Principal, error) {
	return e.Tokens.Verify(token)
}

func (e Engine) Me(ctx context.Context, p auth.Principal) (domain.User, error) {
	user, ok := e.Repo.GetUser(p.UserID)
	if !ok {
		return domain.User{}, NotFoundError{Resource: "User"}
	}
	return user, nil
}

func (e Engine) ListUsers(ctx context.Context, p auth.Principal) ([]UserWithMetrics, error) {
	if err := auth.Require(p.Role, "", auth.Managers...); err != nil {
		return nil, err
	}
	users := e.Repo.ListUsers()
	out := make([]UserWithMetrics, 0, len(users))
	for _, u := range users {
		row := UserWithMetrics{User: u}
		if m, ok := e.Repo.GetMetricByUser(u.ID); ok {
			row.Metrics = &m
		}
		out = append(out, row)
	}
	return out, nil
}

func principalOf(u domain.User) auth.Principal {
	return auth.Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
}
