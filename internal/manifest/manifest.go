package manifest

import (
	"fmt"
	"sort"
	"time"

	"github.com/orangegegege/equipment-manager/pkg/config"
	"github.com/orangegegege/equipment-manager/pkg/enums"
)

// InspectionColumns are the blank check-mark fields on every manifest row.
var InspectionColumns = []string{"Pre-departure", "Mid-trip", "Post-return"}

// SignatureLines is the fixed sign-off footer on every manifest.
var SignatureLines = []string{"Equipment custodian", "Event lead", "Supervisor"}

// Line is one committed borrow line feeding the manifest.
type Line struct {
	EquipmentID string
	Name        string
	Category    enums.EquipmentCategory
	Qty         int
}

// Row is one rendered manifest row. CategoryLabel is only set on the run's
// midpoint row; the rest of the run renders an empty grouping cell.
type Row struct {
	CategoryLabel string
	EquipmentID   string
	Name          string
	Qty           int
	RunIndex      int
	RunStart      bool
	RunEnd        bool
}

// Run is a contiguous span of rows sharing one category.
type Run struct {
	Label string
	Start int
	End   int
}

// Table is the encoding-independent manifest. Both renderers consume the
// same Table so grouping, ordering, and truncation decisions never diverge.
type Table struct {
	Borrower    string
	BorrowedAt  time.Time
	GeneratedAt time.Time
	Rows        []Row
	Runs        []Run
}

// BuildInput is the raw material for a manifest table.
type BuildInput struct {
	Borrower    string
	BorrowedAt  time.Time
	GeneratedAt time.Time
	Lines       []Line
}

// Service builds and renders borrow manifests.
type Service struct {
	rowsPerPage  int
	nameMaxWidth int
}

// NewService validates the layout knobs and returns a manifest service.
func NewService(cfg config.ManifestConfig) (*Service, error) {
	if cfg.RowsPerPage < 1 {
		return nil, fmt.Errorf("rows per page must be at least 1")
	}
	if cfg.NameMaxWidth < 4 {
		return nil, fmt.Errorf("name display width must be at least 4")
	}
	return &Service{rowsPerPage: cfg.RowsPerPage, nameMaxWidth: cfg.NameMaxWidth}, nil
}

// Build produces the grouped table. It is deterministic: input order never
// leaks into the output, only the (category, equipment id) sort does.
func (s *Service) Build(input BuildInput) Table {
	lines := make([]Line, len(input.Lines))
	copy(lines, input.Lines)

	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Category != lines[j].Category {
			return lines[i].Category < lines[j].Category
		}
		return lines[i].EquipmentID < lines[j].EquipmentID
	})

	table := Table{
		Borrower:    input.Borrower,
		BorrowedAt:  input.BorrowedAt,
		GeneratedAt: input.GeneratedAt,
		Rows:        make([]Row, 0, len(lines)),
	}

	for i := 0; i < len(lines); {
		runStart := i
		for i < len(lines) && lines[i].Category == lines[runStart].Category {
			i++
		}
		runEnd := i - 1
		runIndex := len(table.Runs)
		table.Runs = append(table.Runs, Run{
			Label: string(lines[runStart].Category),
			Start: runStart,
			End:   runEnd,
		})

		midpoint := runStart + (runEnd-runStart)/2
		for j := runStart; j <= runEnd; j++ {
			row := Row{
				EquipmentID: lines[j].EquipmentID,
				Name:        truncateName(lines[j].Name, s.nameMaxWidth),
				Qty:         lines[j].Qty,
				RunIndex:    runIndex,
				RunStart:    j == runStart,
				RunEnd:      j == runEnd,
			}
			if j == midpoint {
				row.CategoryLabel = string(lines[j].Category)
			}
			table.Rows = append(table.Rows, row)
		}
	}

	return table
}

// Filename embeds the generation date for traceability.
func Filename(extension string, at time.Time) string {
	return fmt.Sprintf("borrow-manifest-%s.%s", at.Format("2006-01-02"), extension)
}

func truncateName(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max-3]) + "..."
}
