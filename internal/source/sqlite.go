package source

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agis/acgrid/internal/grid"
	"github.com/agis/acgrid/internal/timeparse"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLite reads timestamps from one column of a table. Values may be unix
// seconds, RFC 3339 text or plain dates. When CountColumn is set every row
// carries its own weight.
type SQLite struct {
	Path        string
	Table       string
	Column      string
	CountColumn string
}

func (s SQLite) Name() string { return "sqlite:" + s.Path }

func (s SQLite) query() (string, error) {
	for _, id := range []string{s.Table, s.Column} {
		if !identRe.MatchString(id) {
			return "", fmt.Errorf("invalid identifier %q", id)
		}
	}
	if s.CountColumn == "" {
		return fmt.Sprintf(`SELECT "%s" FROM "%s"`, s.Column, s.Table), nil
	}
	if !identRe.MatchString(s.CountColumn) {
		return "", fmt.Errorf("invalid identifier %q", s.CountColumn)
	}
	return fmt.Sprintf(`SELECT "%s", "%s" FROM "%s"`, s.Column, s.CountColumn, s.Table), nil
}

func readOnlyDSN(path string) string {
	return "file:" + (&url.URL{Path: path}).EscapedPath() + "?mode=ro&immutable=1"
}

// openReadOnly opens an existing database without taking write locks, so
// files owned by running applications can be read.
func openReadOnly(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: path, Err: err}
		}
		return nil, err
	}
	db, err := sql.Open("sqlite", readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	return db, nil
}

func (s SQLite) Load(ctx context.Context, r Range) (Result, error) {
	q, err := s.query()
	if err != nil {
		return Result{}, err
	}
	db, err := openReadOnly(s.Path)
	if err != nil {
		return Result{}, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return Result{}, fmt.Errorf("query sqlite db: %w", err)
	}
	defer rows.Close()

	var out Result
	loc := r.location()
	row := 0
	for rows.Next() {
		row++
		var raw any
		var count sql.NullInt64
		if s.CountColumn == "" {
			err = rows.Scan(&raw)
		} else {
			err = rows.Scan(&raw, &count)
		}
		if err != nil {
			return Result{}, fmt.Errorf("scan row %d: %w", row, err)
		}
		if raw == nil {
			continue
		}
		ts, err := sqliteTime(raw, loc)
		if err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("row %d: %v", row, err))
			continue
		}
		if s.CountColumn == "" {
			out.Dates = append(out.Dates, ts)
			continue
		}
		// A NULL or non-positive count still matches its day.
		out.Weighted = append(out.Weighted, grid.Weighted{Date: ts, Count: int(count.Int64)})
	}
	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("read sqlite rows: %w", err)
	}
	return out, nil
}

func sqliteTime(v any, loc *time.Location) (time.Time, error) {
	switch x := v.(type) {
	case int64:
		return time.Unix(x, 0).In(loc), nil
	case float64:
		return time.Unix(int64(x), 0).In(loc), nil
	case time.Time:
		return x.In(loc), nil
	case []byte:
		return timeparse.ParseTimestamp(string(x), loc)
	case string:
		return timeparse.ParseTimestamp(x, loc)
	default:
		return time.Time{}, fmt.Errorf("unsupported value %s", strconv.Quote(fmt.Sprint(v)))
	}
}

