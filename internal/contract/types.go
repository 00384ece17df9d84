package contract

import "time"

const SchemaVersion = "v1"

type ErrorCode string

const (
	ErrGeneric           ErrorCode = "GENERIC_FAILURE"
	ErrInvalidUsage      ErrorCode = "INVALID_USAGE"
	ErrNotFound          ErrorCode = "NOT_FOUND"
	ErrSourceUnavailable ErrorCode = "SOURCE_UNAVAILABLE"
	ErrTimeout           ErrorCode = "TIMEOUT"
)

type ErrorEnvelope struct {
	SchemaVersion string         `json:"schema_version"`
	Error         ErrorBody      `json:"error"`
	Meta          map[string]any `json:"meta,omitempty"`
}

type ErrorBody struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Hint    string    `json:"hint,omitempty"`
}

type SuccessEnvelope struct {
	SchemaVersion string         `json:"schema_version"`
	Command       string         `json:"command"`
	GeneratedAt   time.Time      `json:"generated_at"`
	Data          any            `json:"data"`
	Meta          map[string]any `json:"meta"`
	Warnings      []string       `json:"warnings"`
}

// Cell is one day of the grid. Date is YYYY-MM-DD in the grid's timezone.
type Cell struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Count   int    `json:"count"`
}

type Week struct {
	Start string `json:"start"`
	Total int    `json:"total"`
	Cells []Cell `json:"cells"`
}

type Stats struct {
	Days          int    `json:"days"`
	Total         int    `json:"total"`
	Max           int    `json:"max"`
	ActiveDays    int    `json:"active_days"`
	LongestStreak int    `json:"longest_streak"`
	CurrentStreak int    `json:"current_streak"`
	FirstDay      string `json:"first_day,omitempty"`
	LastDay       string `json:"last_day,omitempty"`
}

type Grid struct {
	ID        string `json:"id"`
	Version   uint64 `json:"version"`
	State     string `json:"state"`
	From      string `json:"from"`
	To        string `json:"to"`
	Axis      string `json:"axis"`
	WeekStart string `json:"week_start"`
	Timezone  string `json:"timezone"`
	Matched   int    `json:"matched"`
	Dropped   int    `json:"dropped"`
	Stats     Stats  `json:"stats"`
	Weeks     []Week `json:"weeks"`
}
