// Package auth holds the access guard and credential handling: password
// digests and signed bearer tokens.
package auth

import "slices"

// Principal is the caller identity carried by a verified bearer token.
type Principal struct {
	UserID int64
	Email  string
	Role   string
}

// Fixed role sets used by the route guards.
var (
	Admins   = []string{"admin"}
	Managers = []string{"admin", "marketing_manager"}
)

// ForbiddenError indicates the caller's role does not grant the operation.
type ForbiddenError struct {
	Message string
}

func (e ForbiddenError) Error() string {
	if e.Message == "" {
		return "Access denied. Insufficient permissions."
	}
	return e.Message
}

// Allowed reports whether role is one of required. An empty role is never
// allowed.
func Allowed(role string, required ...string) bool {
	if role == "" {
		return false
	}
	return slices.Contains(required, role)
}

// OwnerOrAllowed admits the owner of a resource regardless of role, and
// anyone else whose role is in required.
func OwnerOrAllowed(p Principal, ownerID int64, required ...string) bool {
	if p.UserID != 0 && p.UserID == ownerID {
		return true
	}
	return Allowed(p.Role, required...)
}

// Require returns a ForbiddenError with msg unless role is in required.
func Require(role, msg string, required ...string) error {
	if Allowed(role, required...) {
		return nil
	}
	return ForbiddenError{Message: msg}
}
