package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/orangegegege/equipment-manager/api/middleware"
	"github.com/orangegegege/equipment-manager/api/responses"
	"github.com/orangegegege/equipment-manager/api/validators"
	cartsvc "github.com/orangegegege/equipment-manager/internal/cart"
	pkgerrors "github.com/orangegegege/equipment-manager/pkg/errors"
	"github.com/orangegegege/equipment-manager/pkg/logger"
)

type cartAddRequest struct {
	EquipmentID uuid.UUID `json:"equipment_id" validate:"required"`
}

type cartQuantityRequest struct {
	Qty int `json:"qty" validate:"required,min=1"`
}

func cartSession(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (string, bool) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing"))
		return "", false
	}
	return sessionID, true
}

// CartFetch renders the caller's cart against current item availability.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := cartSession(w, r, logg)
		if !ok {
			return
		}

		cart, err := svc.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

// CartAddItem puts a single unit of an item into the cart. Duplicates and
// unavailable items come back as the unchanged cart rather than an error.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := cartSession(w, r, logg)
		if !ok {
			return
		}

		var payload cartAddRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.Add(r.Context(), sessionID, payload.EquipmentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

// CartSetQuantity updates a line's quantity, clamping into what the ledger
// can still satisfy.
func CartSetQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := cartSession(w, r, logg)
		if !ok {
			return
		}

		equipmentID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		var payload cartQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.SetQuantity(r.Context(), sessionID, equipmentID, payload.Qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

// CartRemoveItem drops one line from the cart.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := cartSession(w, r, logg)
		if !ok {
			return
		}

		equipmentID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		cart, err := svc.Remove(r.Context(), sessionID, equipmentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

// CartClear empties the cart without committing anything.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := cartSession(w, r, logg)
		if !ok {
			return
		}

		if err := svc.Clear(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}
