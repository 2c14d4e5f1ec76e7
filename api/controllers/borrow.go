package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/orangegegege/equipment-manager/api/middleware"
	"github.com/orangegegege/equipment-manager/api/responses"
	"github.com/orangegegege/equipment-manager/api/validators"
	borrowsvc "github.com/orangegegege/equipment-manager/internal/borrow"
	pkgerrors "github.com/orangegegege/equipment-manager/pkg/errors"
	"github.com/orangegegege/equipment-manager/pkg/logger"
	"github.com/orangegegege/equipment-manager/pkg/pagination"
)

// BorrowCommit turns the caller's cart into durable borrow records.
func BorrowCommit(svc borrowsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "borrow service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing"))
			return
		}

		var payload borrowsvc.CommitInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Commit(r.Context(), sessionID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// RecordReturn closes a single borrow record and restores the ledger.
func RecordReturn(svc borrowsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "borrow service unavailable"))
			return
		}

		recordID, err := uuid.Parse(chi.URLParam(r, "recordId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid record id"))
			return
		}

		record, err := svc.Return(r.Context(), recordID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

// RecordsList serves the borrow ledger with borrower and open-only filters.
func RecordsList(svc borrowsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "borrow service unavailable"))
			return
		}

		activeOnly, err := validators.ParseQueryBool(r, "active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := borrowsvc.ListRecordsInput{
			BorrowerName: validators.SanitizeString(r.URL.Query().Get("borrower"), 200),
			ActiveOnly:   activeOnly,
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}

		result, err := svc.ListRecords(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type bulkReturnRequest struct {
	BorrowerName string `json:"borrower_name" validate:"required"`
}

// ReturnsBulk closes every open record for one borrower, reporting partial
// failures instead of aborting on the first.
func ReturnsBulk(svc borrowsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "borrow service unavailable"))
			return
		}

		var payload bulkReturnRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ReturnAllForBorrower(r.Context(), payload.BorrowerName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
