package manifest

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Manifest"

// RenderXLSX serializes the table into the flowing table encoding. Category
// runs become vertically merged cells instead of the midpoint-label trick
// the paginated encoding uses; the grouping decisions are the same.
func (s *Service) RenderXLSX(table Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("creating manifest sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("dropping default sheet: %w", err)
	}

	setCell := func(col, row int, value any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheetName, cell, value)
	}

	if err := setCell(1, 1, "Borrow Manifest"); err != nil {
		return nil, err
	}
	if err := setCell(1, 2, fmt.Sprintf("Borrower: %s", table.Borrower)); err != nil {
		return nil, err
	}
	if err := setCell(1, 3, fmt.Sprintf("Borrowed: %s", table.BorrowedAt.Format("2006-01-02"))); err != nil {
		return nil, err
	}
	if err := setCell(3, 3, fmt.Sprintf("Generated: %s", table.GeneratedAt.Format("2006-01-02"))); err != nil {
		return nil, err
	}

	const headerRow = 5
	headers := append([]string{"Category", "Item ID", "Item", "Qty"}, InspectionColumns...)
	for i, header := range headers {
		if err := setCell(i+1, headerRow, header); err != nil {
			return nil, err
		}
	}

	for i, row := range table.Rows {
		rowNum := headerRow + 1 + i
		if err := setCell(2, rowNum, row.EquipmentID); err != nil {
			return nil, err
		}
		if err := setCell(3, rowNum, row.Name); err != nil {
			return nil, err
		}
		if err := setCell(4, rowNum, row.Qty); err != nil {
			return nil, err
		}
	}

	for _, run := range table.Runs {
		startCell, err := excelize.CoordinatesToCellName(1, headerRow+1+run.Start)
		if err != nil {
			return nil, err
		}
		endCell, err := excelize.CoordinatesToCellName(1, headerRow+1+run.End)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, startCell, run.Label); err != nil {
			return nil, err
		}
		if run.Start != run.End {
			if err := f.MergeCell(sheetName, startCell, endCell); err != nil {
				return nil, fmt.Errorf("merging category run: %w", err)
			}
		}
	}

	signatureRow := headerRow + len(table.Rows) + 3
	for i, signer := range SignatureLines {
		if err := setCell(1, signatureRow+i, signer+":"); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("rendering manifest xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
