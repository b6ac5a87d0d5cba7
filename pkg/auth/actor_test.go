package auth

import (
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/minimart-backend/pkg/enums"
)

func TestActorHelpers(t *testing.T) {
	var guest Actor
	if !guest.IsGuest() || guest.IsAdmin() || guest.UserIDPtr() != nil {
		t.Fatalf("zero actor must be a guest")
	}

	id := uuid.New()
	admin := Actor{UserID: id, Role: enums.UserRoleAdmin}
	if admin.IsGuest() || !admin.IsAdmin() {
		t.Fatalf("expected admin actor")
	}
	if ptr := admin.UserIDPtr(); ptr == nil || *ptr != id {
		t.Fatalf("expected user id pointer")
	}

	if (Actor{Role: enums.UserRoleAdmin}).IsAdmin() {
		t.Fatalf("role without user id must not count as admin")
	}
}
