package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/minimart-backend/api/middleware"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
)

func unavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable")
}

// callerID returns the authenticated user id. Routes using it sit behind
// middleware.Auth, so a guest here means the router is misconfigured.
func callerID(r *http.Request) (uuid.UUID, error) {
	actor := middleware.ActorFromContext(r.Context())
	if actor.IsGuest() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return actor.UserID, nil
}
