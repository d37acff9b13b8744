package models

// Status is the health classification of a single replica check.
type Status int

const (
	StatusHealthy Status = iota + 1
	StatusSick
	StatusDead
)

// String returns the wire form used in reports.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusSick:
		return "sick"
	case StatusDead:
		return "dead"
	default:
		return "unknown"
	}
}
