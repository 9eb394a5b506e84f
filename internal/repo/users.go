package repo

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"teamboard/internal/domain"
)

// CreateUser stores a user, deriving the avatar from the name when none is
// given, and opens the user's zeroed metric row.
func (r *Repo) CreateUser(in domain.UserInput) domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createUserLocked(in)
}

// CreateUserIfAbsent creates the user unless one with the same email already
// exists, in which case the existing user is returned with created=false.
func (r *Repo) CreateUserIfAbsent(in domain.UserInput) (domain.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.userByEmailLocked(in.Email); ok {
		return existing, false
	}
	return r.createUserLocked(in), true
}

func (r *Repo) createUserLocked(in domain.UserInput) domain.User {
	u := domain.User{
		ID:       r.users.nextID(),
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     in.Role,
		Avatar:   in.Avatar,
	}
	if u.Role == "" {
		u.Role = domain.RoleDefault
	}
	if u.Avatar == "" {
		u.Avatar = Initials(u.Name)
	}
	r.users.insert(u.ID, u)
	r.createMetricLocked(domain.MetricInput{UserID: u.ID})
	return u
}

func (r *Repo) GetUser(id int64) (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.users.get(id)
}

// GetUserByEmail returns the first user, in insertion order, with the email.
func (r *Repo) GetUserByEmail(email string) (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.userByEmailLocked(email)
}

func (r *Repo) userByEmailLocked(email string) (domain.User, bool) {
	var found domain.User
	var ok bool
	r.users.each(func(u domain.User) bool {
		if u.Email == email {
			found, ok = u, true
			return false
		}
		return true
	})
	return found, ok
}

func (r *Repo) ListUsers() []domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.users.values()
}

// Initials returns the uppercased first letters of the first two words of name.
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.FieldsFunc(name, unicode.IsSpace) {
		first, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(first))
		if utf8.RuneCountInString(b.String()) == 2 {
			break
		}
	}
	return b.String()
}
