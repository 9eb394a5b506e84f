// Package app assembles the store at startup: restored from a snapshot when
// one exists, otherwise seeded from configuration.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"teamboard/internal/config"
	"teamboard/internal/domain"
	"teamboard/internal/engine/auth"
	"teamboard/internal/repo"
	"teamboard/internal/snapshot"
)

// Bootstrap fills r from the snapshot at cfg.Snapshot.Path if present, and
// from cfg.Seed otherwise. It returns true when a snapshot was restored.
func Bootstrap(ctx context.Context, r *repo.Repo, cfg *config.Config, logger *zap.Logger) (bool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path := cfg.Snapshot.Path; path != "" {
		snap, ok, err := snapshot.Load(ctx, path)
		if err != nil {
			return false, fmt.Errorf("load snapshot: %w", err)
		}
		if ok {
			r.Import(snap)
			logger.Info("store restored from snapshot",
				zap.String("path", path),
				zap.Int("users", len(snap.Users)),
				zap.Int("tasks", len(snap.Tasks)),
			)
			return true, nil
		}
	}
	if err := Seed(r, cfg.Seed); err != nil {
		return false, err
	}
	logger.Info("store seeded",
		zap.Int("roles", len(cfg.Seed.Roles)),
		zap.Int("campaigns", len(cfg.Seed.Campaigns)),
		zap.Bool("admin", cfg.Seed.Admin != nil),
	)
	return false, nil
}

// Seed creates the configured roles, admin user and campaigns. Records that
// already exist by name or email are left alone.
func Seed(r *repo.Repo, seed config.Seed) error {
	for _, role := range seed.Roles {
		if _, exists := r.GetRoleByName(role.Name); exists {
			continue
		}
		r.CreateRole(domain.RoleInput{Name: role.Name, Description: role.Description, Permissions: role.Permissions})
	}
	if a := seed.Admin; a != nil {
		if _, exists := r.GetUserByEmail(a.Email); !exists {
			digest, err := auth.HashPassword(a.Password)
			if err != nil {
				return fmt.Errorf("seed admin: %w", err)
			}
			role := a.Role
			if role == "" {
				role = domain.RoleAdmin
			}
			r.CreateUserIfAbsent(domain.UserInput{Name: a.Name, Email: a.Email, Password: digest, Role: role, Avatar: a.Avatar})
		}
	}
	if len(r.ListCampaigns()) > 0 {
		return nil
	}
	for _, c := range seed.Campaigns {
		start, end, err := c.Dates()
		if err != nil {
			return err
		}
		r.CreateCampaign(domain.CampaignInput{Name: c.Name, Progress: c.Progress, StartDate: start, EndDate: end, Status: c.Status})
	}
	return nil
}

// Persist writes r to the configured snapshot file; it is a no-op when no
// path is configured.
func Persist(ctx context.Context, r *repo.Repo, cfg *config.Config, logger *zap.Logger) error {
	path := cfg.Snapshot.Path
	if path == "" {
		return nil
	}
	if err := snapshot.Save(ctx, path, r.Export()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if logger != nil {
		logger.Info("store snapshot written", zap.String("path", path))
	}
	return nil
}
