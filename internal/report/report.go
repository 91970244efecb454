// Package report renders verification outcomes and scan inventories as
// aligned text tables for the command line.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/refactorcheck/refactorcheck/internal/corpus"
	"github.com/refactorcheck/refactorcheck/internal/model"
	"github.com/refactorcheck/refactorcheck/internal/scan"
)

// Outcome is the result of running one fixture: a Report, or the error that
// prevented one.
type Outcome struct {
	Fixture corpus.Fixture
	Report  model.Report
	Err     error
}

// Failed reports whether the fixture counts against the run.
func (o Outcome) Failed() bool {
	return o.Err != nil || !o.Report.Match()
}

// Status classifies the outcome as "ok", "mismatch", or "error".
func (o Outcome) Status() string {
	switch {
	case o.Err != nil:
		return "error"
	case !o.Report.Match():
		return "mismatch"
	default:
		return "ok"
	}
}

// Detail returns the human explanation for a failed outcome: the error text,
// or the locus of the size drift. Empty for a pass.
func (o Outcome) Detail() string {
	if o.Err != nil {
		return o.Err.Error()
	}
	return o.Report.Locus()
}

// Table writes header and rows as tab-aligned columns with two-space
// gutters.
func Table(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// WriteResults renders one row per outcome followed by the summary line.
// Size cells read want/got.
func WriteResults(w io.Writer, outcomes []Outcome) error {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, []string{
			o.Fixture.Name,
			o.Status(),
			sizeCell(o, o.Report.Method),
			sizeCell(o, o.Report.Class),
			o.Detail(),
		})
	}
	if err := Table(w, []string{"FIXTURE", "STATUS", "METHOD", "CLASS", "DETAIL"}, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s\n", Summary(outcomes))
	return err
}

func sizeCell(o Outcome, c model.SizeCheck) string {
	if o.Err != nil {
		return "-"
	}
	return fmt.Sprintf("%d/%d", c.Expected, c.Actual)
}

// Summary condenses a batch into one line.
func Summary(outcomes []Outcome) string {
	var ok, mismatched, errored int
	for _, o := range outcomes {
		switch o.Status() {
		case "ok":
			ok++
		case "mismatch":
			mismatched++
		default:
			errored++
		}
	}
	return fmt.Sprintf("%d fixtures: %d ok, %d mismatch, %d error", len(outcomes), ok, mismatched, errored)
}

// WriteInventory renders a scan inventory followed by a count line.
func WriteInventory(w io.Writer, entries []scan.Entry) error {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.File,
			e.Class + "." + e.Method,
			strconv.Itoa(e.Line),
			strconv.Itoa(e.Size),
			strconv.Itoa(e.ClassSize),
		})
	}
	if err := Table(w, []string{"FILE", "METHOD", "LINE", "SIZE", "CLASS SIZE"}, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d methods\n", len(entries))
	return err
}
