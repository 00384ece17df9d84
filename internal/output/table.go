package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/agis/acgrid/internal/contract"
)

// Table buffers rows and renders them borderless and left aligned.
type Table struct {
	table  *tablewriter.Table
	header []string
	rows   [][]string
}

func NewTable(w io.Writer, headers []string) *Table {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.Off},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	return &Table{table: table, header: headers}
}

func (t *Table) AddRow(row []string) {
	t.rows = append(t.rows, row)
}

func (t *Table) Render() error {
	t.table.Header(t.header)
	if err := t.table.Bulk(t.rows); err != nil {
		return err
	}
	return t.table.Render()
}

// GridTable writes one row per week in layout order: the week's first day,
// a count per weekday, and the week total.
func (p Printer) GridTable(g contract.Grid) error {
	if len(g.Weeks) == 0 {
		if !p.Quiet {
			_, _ = fmt.Fprintln(p.out(), "no results")
		}
		return nil
	}
	header := []string{"WEEK"}
	for _, c := range g.Weeks[0].Cells {
		header = append(header, abbrevWeekday(c.Weekday))
	}
	header = append(header, "TOTAL")

	t := NewTable(p.out(), header)
	for _, w := range g.Weeks {
		row := []string{w.Start}
		for _, c := range w.Cells {
			row = append(row, strconv.Itoa(c.Count))
		}
		row = append(row, humanize.Comma(int64(w.Total)))
		t.AddRow(row)
	}
	if err := t.Render(); err != nil {
		return err
	}
	if p.Quiet {
		return nil
	}
	_, err := fmt.Fprintln(p.out(), SummaryLine(g.Stats))
	return err
}

// SummaryLine is the one-line human summary of a grid.
func SummaryLine(s contract.Stats) string {
	return fmt.Sprintf("%s %s on %s of %s days, max %s/day, longest streak %s, current streak %s",
		humanize.Comma(int64(s.Total)),
		plural(s.Total, "event", "events"),
		humanize.Comma(int64(s.ActiveDays)),
		humanize.Comma(int64(s.Days)),
		humanize.Comma(int64(s.Max)),
		humanize.Comma(int64(s.LongestStreak)),
		humanize.Comma(int64(s.CurrentStreak)),
	)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func abbrevWeekday(name string) string {
	if len(name) < 3 {
		return name
	}
	return name[:3]
}
