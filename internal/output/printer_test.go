package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/agis/acgrid/internal/contract"
)

func TestSchemaVersionDefault(t *testing.T) {
	p := Printer{}
	if p.schemaVersion() != contract.SchemaVersion {
		t.Fatalf("expected default schema version %q", contract.SchemaVersion)
	}
}

func TestFlattenWithFields(t *testing.T) {
	c := contract.Cell{Date: "2026-02-16", Weekday: "Monday", Count: 3}
	got := flatten(c, []string{"date", "count"})
	if got != "2026-02-16\t3" {
		t.Fatalf("unexpected flatten result: %q", got)
	}
}

func TestSuccessJSONEnvelope(t *testing.T) {
	var out bytes.Buffer
	p := Printer{
		Mode:    ModeJSON,
		Command: "summary",
		Out:     &out,
		Now:     func() time.Time { return time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC) },
	}
	if err := p.Success(contract.Stats{Total: 4}, map[string]any{"days": 7}, nil); err != nil {
		t.Fatal(err)
	}
	var env contract.SuccessEnvelope
	if err := json.Unmarshal(out.Bytes(), &env); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out.String())
	}
	if env.Command != "summary" || env.SchemaVersion != contract.SchemaVersion {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.Warnings == nil {
		t.Fatalf("expected empty warnings array, got null")
	}
	if !strings.Contains(out.String(), `"generated_at": "2026-02-16T12:00:00Z"`) {
		t.Fatalf("unexpected generated_at in %s", out.String())
	}
}

func TestSuccessJSONLWritesOneLinePerItem(t *testing.T) {
	var out bytes.Buffer
	p := Printer{Mode: ModeJSONL, Out: &out}
	cells := []contract.Cell{{Date: "2026-02-16", Count: 1}, {Date: "2026-02-17", Count: 0}}
	if err := p.Success(cells, nil, nil); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out.String())
	}
}

func TestPlainWarningsGoToStderr(t *testing.T) {
	var out, errOut bytes.Buffer
	p := Printer{Mode: ModePlain, Out: &out, Err: &errOut}
	if err := p.Success([]contract.Cell{}, nil, []string{"line 3: bad"}); err != nil {
		t.Fatal(err)
	}
	if out.String() != "no results\n" {
		t.Fatalf("unexpected stdout: %q", out.String())
	}
	if errOut.String() != "warning: line 3: bad\n" {
		t.Fatalf("unexpected stderr: %q", errOut.String())
	}
}

func TestErrorEnvelope(t *testing.T) {
	var errOut bytes.Buffer
	p := Printer{Mode: ModeJSON, Err: &errOut}
	if err := p.Error(contract.ErrNotFound, "missing.txt: no such file", "check --dates"); err != nil {
		t.Fatal(err)
	}
	var env contract.ErrorEnvelope
	if err := json.Unmarshal(errOut.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Error.Code != contract.ErrNotFound || env.Error.Hint != "check --dates" {
		t.Fatalf("unexpected error envelope: %+v", env)
	}
}

func TestGridTable(t *testing.T) {
	var out bytes.Buffer
	p := Printer{Mode: ModePlain, Out: &out}
	g := contract.Grid{
		Stats: contract.Stats{Days: 7, Total: 1234, Max: 1000, ActiveDays: 2, LongestStreak: 1, CurrentStreak: 0},
		Weeks: []contract.Week{{
			Start: "2026-02-09",
			Total: 1234,
			Cells: []contract.Cell{
				{Date: "2026-02-09", Weekday: "Monday"},
				{Date: "2026-02-10", Weekday: "Tuesday", Count: 234},
				{Date: "2026-02-11", Weekday: "Wednesday"},
				{Date: "2026-02-12", Weekday: "Thursday", Count: 1000},
				{Date: "2026-02-13", Weekday: "Friday"},
				{Date: "2026-02-14", Weekday: "Saturday"},
				{Date: "2026-02-15", Weekday: "Sunday"},
			},
		}},
	}
	if err := p.GridTable(g); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{"WEEK", "Mon", "Sun", "TOTAL", "2026-02-09", "1,234", "1,234 events on 2 of 7 days"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
}

func TestSummaryLineSingular(t *testing.T) {
	got := SummaryLine(contract.Stats{Total: 1, ActiveDays: 1, Days: 7, Max: 1, LongestStreak: 1, CurrentStreak: 1})
	if !strings.HasPrefix(got, "1 event on 1 of 7 days") {
		t.Fatalf("unexpected summary line: %q", got)
	}
}
