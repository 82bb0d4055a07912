package auth

import (
	"context"

	"github.com/google/uuid"
)

// Staff roles. Role is fixed at registration and cannot be changed through
// the profile-edit path.
const (
	RoleDoctor = "doctor"
	RoleNurse  = "nurse"
	RoleAdmin  = "admin"
)

// ValidRole reports whether role is one of the known staff roles.
func ValidRole(role string) bool {
	return role == RoleDoctor || role == RoleNurse || role == RoleAdmin
}

// Actor identifies the authenticated user performing an operation. Handlers
// extract it from the request and pass it to services as an explicit
// argument; services never read an ambient current-user value.
type Actor struct {
	ID            uuid.UUID
	Username      string
	Role          string
	IsStaff       bool
	IsSuperuser   bool
	Authenticated bool
}

// CanAccessClinicalAdmin is the gate for the clinical-admin surface:
// authenticated and either flagged as staff or holding the admin or doctor
// role. Nurses without the staff flag are excluded. The general surface
// requires authentication only; there is no per-record ownership check.
func CanAccessClinicalAdmin(a Actor) bool {
	return a.Authenticated && (a.IsStaff || a.Role == RoleAdmin || a.Role == RoleDoctor)
}

type contextKey string

const actorKey contextKey = "actor"

// WithActor returns a context carrying the actor.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFromContext retrieves the actor set by the auth middleware. The zero
// Actor (unauthenticated) is returned when none is present.
func ActorFromContext(ctx context.Context) Actor {
	a, _ := ctx.Value(actorKey).(Actor)
	return a
}
