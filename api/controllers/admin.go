package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/minimart-backend/api/middleware"
	"github.com/angelmondragon/minimart-backend/api/responses"
	"github.com/angelmondragon/minimart-backend/api/validators"
	"github.com/angelmondragon/minimart-backend/internal/sellers"
	"github.com/angelmondragon/minimart-backend/pkg/auth"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
	"github.com/angelmondragon/minimart-backend/pkg/logger"
)

// AdminListSellers pages seller applications by status, PENDING by default.
func AdminListSellers(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("seller"))
			return
		}
		status := enums.SellerStatusPending
		if raw := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))); raw != "" {
			parsed, err := enums.ParseSellerStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").WithDetails(map[string]any{"field": "status"}))
				return
			}
			status = parsed
		}
		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListByStatus(r.Context(), status, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AdminApproveSeller(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return adminSellerDecision(svc, logg, sellers.Service.Approve)
}

func AdminRejectSeller(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return adminSellerDecision(svc, logg, sellers.Service.Reject)
}

type sellerDecision func(sellers.Service, context.Context, auth.Actor, uuid.UUID) (*sellers.SellerDTO, error)

func adminSellerDecision(svc sellers.Service, logg *logger.Logger, decide sellerDecision) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("seller"))
			return
		}
		sellerID, err := validators.PathUUID(r, "sellerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		seller, err := decide(svc, r.Context(), middleware.ActorFromContext(r.Context()), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, seller)
	}
}
