package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/orangegegege/equipment-manager/api/responses"
	"github.com/orangegegege/equipment-manager/api/validators"
	borrowsvc "github.com/orangegegege/equipment-manager/internal/borrow"
	"github.com/orangegegege/equipment-manager/internal/manifest"
	"github.com/orangegegege/equipment-manager/pkg/enums"
	pkgerrors "github.com/orangegegege/equipment-manager/pkg/errors"
	"github.com/orangegegege/equipment-manager/pkg/logger"
	"github.com/orangegegege/equipment-manager/pkg/metrics"
	"github.com/orangegegege/equipment-manager/pkg/pagination"
)

const (
	manifestPDFContentType  = "application/pdf"
	manifestXLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type manifestLineRequest struct {
	EquipmentID uuid.UUID `json:"equipment_id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Category    string    `json:"category" validate:"required"`
	Qty         int       `json:"qty" validate:"required,min=1"`
}

type manifestRequest struct {
	BorrowerName string                `json:"borrower_name" validate:"required"`
	BorrowedAt   *time.Time            `json:"borrowed_at"`
	Lines        []manifestLineRequest `json:"lines" validate:"omitempty,dive"`
}

// ManifestPDF renders the paginated manifest for download.
func ManifestPDF(manifests *manifest.Service, records borrowsvc.Service, workflow *metrics.WorkflowMetrics, logg *logger.Logger) http.HandlerFunc {
	return manifestHandler(manifests, records, workflow, logg, "pdf", manifestPDFContentType, func(table manifest.Table) ([]byte, error) {
		return manifests.RenderPDF(table)
	})
}

// ManifestXLSX renders the flowing table manifest for download.
func ManifestXLSX(manifests *manifest.Service, records borrowsvc.Service, workflow *metrics.WorkflowMetrics, logg *logger.Logger) http.HandlerFunc {
	return manifestHandler(manifests, records, workflow, logg, "xlsx", manifestXLSXContentType, func(table manifest.Table) ([]byte, error) {
		return manifests.RenderXLSX(table)
	})
}

// manifestHandler accepts either explicit committed lines or, when the body
// carries none, regenerates from the borrower's still-open records.
func manifestHandler(manifests *manifest.Service, records borrowsvc.Service, workflow *metrics.WorkflowMetrics, logg *logger.Logger, extension, contentType string, render func(manifest.Table) ([]byte, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if manifests == nil || records == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "manifest service unavailable"))
			return
		}

		var payload manifestRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, borrowedAt, err := manifestLines(r, records, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		started := time.Now()
		now := started.UTC()
		table := manifests.Build(manifest.BuildInput{
			Borrower:    payload.BorrowerName,
			BorrowedAt:  borrowedAt,
			GeneratedAt: now,
			Lines:       lines,
		})

		data, err := render(table)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rendering manifest"))
			return
		}
		workflow.ObserveManifestRender(extension, time.Since(started))

		responses.WriteFile(w, contentType, manifest.Filename(extension, now), data)
	}
}

func manifestLines(r *http.Request, records borrowsvc.Service, payload manifestRequest) ([]manifest.Line, time.Time, error) {
	borrowedAt := time.Now().UTC()
	if payload.BorrowedAt != nil {
		borrowedAt = payload.BorrowedAt.UTC()
	}

	if len(payload.Lines) > 0 {
		lines := make([]manifest.Line, 0, len(payload.Lines))
		for _, raw := range payload.Lines {
			category, err := enums.ParseEquipmentCategory(raw.Category)
			if err != nil {
				return nil, time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid manifest line category")
			}
			lines = append(lines, manifest.Line{
				EquipmentID: raw.EquipmentID.String(),
				Name:        raw.Name,
				Category:    category,
				Qty:         raw.Qty,
			})
		}
		return lines, borrowedAt, nil
	}

	result, err := records.ListRecords(r.Context(), borrowsvc.ListRecordsInput{
		BorrowerName: payload.BorrowerName,
		ActiveOnly:   true,
		Pagination:   pagination.Params{Limit: pagination.MaxLimit},
	})
	if err != nil {
		return nil, time.Time{}, err
	}
	if len(result.Records) == 0 {
		return nil, time.Time{}, pkgerrors.New(pkgerrors.CodeNotFound, "no open borrow records for borrower")
	}

	lines := make([]manifest.Line, 0, len(result.Records))
	earliest := result.Records[0].BorrowedAt
	for _, record := range result.Records {
		if record.BorrowedAt.Before(earliest) {
			earliest = record.BorrowedAt
		}
		lines = append(lines, manifest.Line{
			EquipmentID: record.EquipmentID.String(),
			Name:        record.EquipmentName,
			Category:    record.EquipmentCategory,
			Qty:         record.Qty,
		})
	}
	if payload.BorrowedAt == nil {
		borrowedAt = earliest
	}
	return lines, borrowedAt, nil
}
