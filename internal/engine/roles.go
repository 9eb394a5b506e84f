package engine

import (
	"context"
	"strings"

	"teamboard/internal/domain"
	"teamboard/internal/engine/auth"
	"teamboard/internal/events"
)

const denyRoles = "Access denied. Insufficient permissions."

func (e Engine) ListRoles(ctx context.Context, p auth.Principal) ([]domain.Role, error) {
	if err := auth.Require(p.Role, denyRoles, auth.Admins...); err != nil {
		return nil, err
	}
	return e.Repo.ListRoles(), nil
}

func (e Engine) GetRole(ctx context.Context, p auth.Principal, id int64) (domain.Role, error) {
	if err := auth.Require(p.Role, denyRoles, auth.Admins...); err != nil {
		return domain.Role{}, err
	}
	role, ok := e.Repo.GetRole(id)
	if !ok {
		return domain.Role{}, NotFoundError{Resource: "Role"}
	}
	return role, nil
}

func (e Engine) CreateRole(ctx context.Context, p auth.Principal, in domain.RoleInput) (domain.Role, error) {
	if err := auth.Require(p.Role, denyRoles, auth.Admins...); err != nil {
		return domain.Role{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := required("name", in.Name); err != nil {
		return domain.Role{}, err
	}
	if _, taken := e.Repo.GetRoleByName(in.Name); taken {
		return domain.Role{}, ErrRoleNameTaken
	}
	role := e.Repo.CreateRole(in)
	e.Events.Record(ctx, p.UserID, "Created role", events.ResourceRole, ptr(role.ID))
	return role, nil
}

func (e Engine) UpdateRole(ctx context.Context, p auth.Principal, id int64, patch domain.RolePatch) (domain.Role, error) {
	if err := auth.Require(p.Role, denyRoles, auth.Admins...); err != nil {
		return domain.Role{}, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := required("name", name); err != nil {
			return domain.Role{}, err
		}
		if other, taken := e.Repo.GetRoleByName(name); taken && other.ID != id {
			return domain.Role{}, ErrRoleNameTaken
		}
		patch.Name = &name
	}
	role, ok := e.Repo.UpdateRole(id, patch)
	if !ok {
		return domain.Role{}, NotFoundError{Resource: "Role"}
	}
	e.Events.Record(ctx, p.UserID, "Updated role", events.ResourceRole, ptr(id))
	return role, nil
}

func (e Engine) DeleteRole(ctx context.Context, p auth.Principal, id int64) error {
	if err := auth.Require(p.Role, denyRoles, auth.Admins...); err != nil {
		return err
	}
	if !e.Repo.DeleteRole(id) {
		return NotFoundError{Resource: "Role"}
	}
	e.Events.Record(ctx, p.UserID, "Deleted role", events.ResourceRole, ptr(id))
	return nil
}
