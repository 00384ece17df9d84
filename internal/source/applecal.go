package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// cocoaEpochOffset is the number of seconds between the unix epoch and
// 2001-01-01T00:00:00Z, the epoch of the macOS Calendar store.
const cocoaEpochOffset = int64(978307200)

// AppleCalendar reads event occurrences from the macOS Calendar cache
// database. Recurring events are already expanded there, one row per
// occurrence. Reminders are skipped.
type AppleCalendar struct {
	// Path overrides the database location. Empty means the first of the
	// standard locations that exists.
	Path string
	// Calendars limits the result to calendars whose title or UUID matches,
	// case-insensitively.
	Calendars []string
}

func (s AppleCalendar) Name() string {
	if s.Path == "" {
		return "calendar"
	}
	return "calendar:" + s.Path
}

const occurrenceQuery = `
SELECT
  CAST(oc.occurrence_start_date AS INTEGER) + ? AS start_unix,
  COALESCE(c.UUID, CAST(c.ROWID AS TEXT)) AS cal_id,
  COALESCE(c.title, '') AS cal_name
FROM OccurrenceCache oc
JOIN Calendar c ON c.ROWID = oc.calendar_id
WHERE oc.next_reminder_date IS NULL
  AND oc.occurrence_start_date >= ?
  AND oc.occurrence_start_date < ?
ORDER BY oc.occurrence_start_date ASC`

func (s AppleCalendar) Load(ctx context.Context, r Range) (Result, error) {
	path := s.Path
	if path == "" {
		found, err := findCalendarDB(os.Getenv("HOME"))
		if err != nil {
			return Result{}, err
		}
		path = found
	}
	db, err := openReadOnly(path)
	if err != nil {
		return Result{}, err
	}
	defer db.Close()

	from := r.start().Unix() - cocoaEpochOffset
	to := r.end().Unix() - cocoaEpochOffset
	rows, err := db.QueryContext(ctx, occurrenceQuery, cocoaEpochOffset, from, to)
	if err != nil {
		if isDBAccessDenied(err.Error()) {
			return Result{}, fmt.Errorf("calendar database not readable (grant Full Disk Access to the terminal): %w", err)
		}
		return Result{}, fmt.Errorf("query calendar db: %w", err)
	}
	defer rows.Close()

	var out Result
	skipped := 0
	loc := r.location()
	for rows.Next() {
		var start int64
		var calID, calName string
		if err := rows.Scan(&start, &calID, &calName); err != nil {
			return Result{}, fmt.Errorf("scan calendar row: %w", err)
		}
		if len(s.Calendars) > 0 && !containsFold(s.Calendars, calID) && !containsFold(s.Calendars, calName) {
			skipped++
			continue
		}
		out.Dates = append(out.Dates, time.Unix(start, 0).In(loc))
	}
	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("read calendar rows: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("path", path).Int("occurrences", len(out.Dates)).Int("filtered", skipped).Msg("calendar cache read")
	return out, nil
}

func findCalendarDB(home string) (string, error) {
	candidates := []string{
		filepath.Join(home, "Library/Group Containers/group.com.apple.calendar/Calendar.sqlitedb"),
		filepath.Join(home, "Library/Calendars/Calendar.sqlitedb"),
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", &NotFoundError{Path: candidates[0], Err: errors.New("calendar database not found")}
}

func containsFold(items []string, val string) bool {
	for _, item := range items {
		if strings.EqualFold(strings.TrimSpace(item), strings.TrimSpace(val)) {
			return true
		}
	}
	return false
}

func isDBAccessDenied(msg string) bool {
	s := strings.ToLower(strings.TrimSpace(msg))
	return strings.Contains(s, "authorization denied") ||
		strings.Contains(s, "not authorized") ||
		strings.Contains(s, "operation not permitted") ||
		strings.Contains(s, "permission denied")
}
