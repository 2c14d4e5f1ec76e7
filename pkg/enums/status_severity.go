package enums

// StatusSeverity ranks the human-facing availability status of an item.
type StatusSeverity string

const (
	StatusSeverityOK       StatusSeverity = "ok"
	StatusSeverityWarning  StatusSeverity = "warning"
	StatusSeverityCritical StatusSeverity = "critical"
	StatusSeverityNeutral  StatusSeverity = "neutral"
)

// String implements fmt.Stringer.
func (s StatusSeverity) String() string {
	return string(s)
}
