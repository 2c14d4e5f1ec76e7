package manifest

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	colCategoryWidth = 32.0
	colIDWidth       = 24.0
	colNameWidth     = 62.0
	colQtyWidth      = 14.0
	colCheckWidth    = 19.0
	rowHeight        = 8.0
)

// pageRow is a table row placed on a concrete page. Label and TopBorder
// already account for forced run boundaries at page breaks.
type pageRow struct {
	Row
	Label     string
	TopBorder bool
}

// paginate slices the table into pages of at most rowsPerPage rows. The
// first row of every page is a forced run boundary: it carries the run's
// label and a top border even when it continues the previous page's run,
// so no page opens with an orphaned label-less row.
func (s *Service) paginate(table Table) [][]pageRow {
	var pages [][]pageRow
	var current []pageRow

	for _, row := range table.Rows {
		forced := false
		if len(current) >= s.rowsPerPage {
			pages = append(pages, current)
			current = nil
			forced = true
		}

		placed := pageRow{
			Row:       row,
			Label:     row.CategoryLabel,
			TopBorder: row.RunStart,
		}
		if forced || len(current) == 0 && len(pages) > 0 {
			placed.TopBorder = true
			if placed.Label == "" {
				placed.Label = table.Runs[row.RunIndex].Label
			}
		}
		current = append(current, placed)
	}
	if len(current) > 0 {
		pages = append(pages, current)
	}
	return pages
}

// RenderPDF serializes the table into the paginated encoding.
func (s *Service) RenderPDF(table Table) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Borrow Manifest", false)

	header := func() {
		pdf.AddPage()

		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 10, "Borrow Manifest", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, fmt.Sprintf("Borrower: %s", table.Borrower), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("Borrowed: %s    Generated: %s",
			table.BorrowedAt.Format("2006-01-02"), table.GeneratedAt.Format("2006-01-02")), "", 1, "L", false, 0, "")
		pdf.Ln(2)

		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(colCategoryWidth, rowHeight, "Category", "1", 0, "C", false, 0, "")
		pdf.CellFormat(colIDWidth, rowHeight, "Item ID", "1", 0, "C", false, 0, "")
		pdf.CellFormat(colNameWidth, rowHeight, "Item", "1", 0, "C", false, 0, "")
		pdf.CellFormat(colQtyWidth, rowHeight, "Qty", "1", 0, "C", false, 0, "")
		for _, column := range InspectionColumns {
			pdf.CellFormat(colCheckWidth, rowHeight, column, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}

	pages := s.paginate(table)
	if len(pages) == 0 {
		header()
	}

	for _, page := range pages {
		header()
		for _, row := range page {
			categoryBorder := "LR"
			if row.TopBorder {
				categoryBorder += "T"
			}
			if row.RunEnd {
				categoryBorder += "B"
			}

			pdf.CellFormat(colCategoryWidth, rowHeight, row.Label, categoryBorder, 0, "C", false, 0, "")
			pdf.CellFormat(colIDWidth, rowHeight, shortID(row.EquipmentID), "1", 0, "C", false, 0, "")
			pdf.CellFormat(colNameWidth, rowHeight, row.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(colQtyWidth, rowHeight, fmt.Sprintf("%d", row.Qty), "1", 0, "C", false, 0, "")
			for range InspectionColumns {
				pdf.CellFormat(colCheckWidth, rowHeight, "", "1", 0, "C", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	pdf.Ln(12)
	for _, signer := range SignatureLines {
		pdf.CellFormat(60, 10, signer+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(90, 10, "", "B", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering manifest pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// shortID keeps the first uuid block so the column stays readable.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
