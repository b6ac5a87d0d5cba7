package auth

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/minimart-backend/pkg/enums"
)

// Actor is the resolved caller handed from the HTTP layer to services. The
// zero value is an anonymous guest.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsGuest reports whether no user is attached.
func (a Actor) IsGuest() bool {
	return a.UserID == uuid.Nil
}

// IsAdmin reports whether the caller holds the ADMIN role.
func (a Actor) IsAdmin() bool {
	return !a.IsGuest() && a.Role == enums.UserRoleAdmin
}

// UserIDPtr returns the user id or nil for guests.
func (a Actor) UserIDPtr() *uuid.UUID {
	if a.IsGuest() {
		return nil
	}
	id := a.UserID
	return &id
}
