package cart

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/minimart-backend/api/middleware"
	"github.com/angelmondragon/minimart-backend/api/responses"
	"github.com/angelmondragon/minimart-backend/api/validators"
	cartsvc "github.com/angelmondragon/minimart-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
	"github.com/angelmondragon/minimart-backend/pkg/logger"
)

type lineRequest struct {
	ItemID       uuid.UUID  `json:"item_id" validate:"required"`
	ItemOptionID *uuid.UUID `json:"item_option_id,omitempty"`
	Count        int        `json:"count" validate:"gt=0,lte=10000"`
}

type removeRequest struct {
	ItemID       uuid.UUID  `json:"item_id" validate:"required"`
	ItemOptionID *uuid.UUID `json:"item_option_id,omitempty"`
}

func (l lineRequest) key() cartsvc.LineKey {
	return cartsvc.LineKey{ItemID: l.ItemID, ItemOptionID: l.ItemOptionID}
}

func buyerIDFromContext(r *http.Request) (uuid.UUID, error) {
	actor := middleware.ActorFromContext(r.Context())
	if actor.IsGuest() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return actor.UserID, nil
}

func unavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable")
}

// CartFetch returns the caller's cart. A buyer without one gets an empty cart.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		buyerID, err := buyerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.GetCart(r.Context(), buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// CartAdd adds count to the (item, option) line, creating it when absent.
func CartAdd(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		buyerID, err := buyerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload lineRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.AddItem(r.Context(), buyerID, payload.key(), payload.Count)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

// CartChangeQuantity overwrites the count of an existing line.
func CartChangeQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		buyerID, err := buyerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload lineRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.ChangeQuantity(r.Context(), buyerID, payload.key(), payload.Count)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func CartRemove(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		buyerID, err := buyerIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload removeRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.RemoveItem(r.Context(), buyerID, cartsvc.LineKey{ItemID: payload.ItemID, ItemOptionID: payload.ItemOptionID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}
