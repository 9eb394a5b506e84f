package repo

import "teamboard/internal/domain"

func (r *Repo) CreateRole(in domain.RoleInput) domain.Role {
	r.mu.Lock()
	defer r.mu.Unlock()
	role := domain.Role{
		ID:          r.roles.nextID(),
		Name:        in.Name,
		Description: in.Description,
		Permissions: cloneStrings(in.Permissions),
	}
	if role.Permissions == nil {
		role.Permissions = []string{}
	}
	r.roles.insert(role.ID, role)
	return cloneRole(role)
}

func (r *Repo) GetRole(id int64) (domain.Role, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	role, ok := r.roles.get(id)
	return cloneRole(role), ok
}

// GetRoleByName returns the first role, in insertion order, with the name.
func (r *Repo) GetRoleByName(name string) (domain.Role, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found domain.Role
	var ok bool
	r.roles.each(func(role domain.Role) bool {
		if role.Name == name {
			found, ok = role, true
			return false
		}
		return true
	})
	return cloneRole(found), ok
}

func (r *Repo) ListRoles() []domain.Role {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.roles.values()
	for i := range out {
		out[i] = cloneRole(out[i])
	}
	return out
}

func (r *Repo) UpdateRole(id int64, patch domain.RolePatch) (domain.Role, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles.get(id)
	if !ok {
		return domain.Role{}, false
	}
	if patch.Name != nil {
		role.Name = *patch.Name
	}
	if patch.Description != nil {
		role.Description = *patch.Description
	}
	if patch.Permissions != nil {
		role.Permissions = cloneStrings(patch.Permissions)
	}
	r.roles.put(id, role)
	return cloneRole(role), true
}

func (r *Repo) DeleteRole(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roles.remove(id)
}

func cloneRole(role domain.Role) domain.Role {
	role.Permissions = cloneStrings(role.Permissions)
	return role
}
