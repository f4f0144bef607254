package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/bifes/internal/bifes"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// palette decorates text for a single output stream.
type palette struct {
	red   *color.Color
	green *color.Color
}

// newPalette enables colors only when w is a terminal and colors were not disabled.
func newPalette(w io.Writer, disabled bool) palette {
	p := palette{red: color.New(color.FgRed), green: color.New(color.FgGreen)}

	if disabled || !isTerminal(w) {
		p.red.DisableColor()
		p.green.DisableColor()
	} else {
		p.red.EnableColor()
		p.green.EnableColor()
	}

	return p
}

func (p palette) alert(s string) string { return p.red.Sprint(s) }

func (p palette) accent(s string) string { return p.green.Sprint(s) }

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Printer is a bifes.Reporter writing report lines to out and diagnostics to errOut.
// When held is set, entries are collected instead of printed.
type Printer struct {
	out     io.Writer
	errOut  io.Writer
	palette palette
	held    *bifes.Collector
	err     error
}

// Report prints "<size> bytes: <path>" or holds the entry for later.
func (p *Printer) Report(entry bifes.Entry) {
	if p.held != nil {
		p.held.Report(entry)

		return
	}

	p.line(entry)
}

// Diagnose prints a diagnostic naming the skipped path.
func (p *Printer) Diagnose(diag bifes.Diagnostic) {
	var msg string

	switch diag.Op {
	case bifes.OpList:
		msg = fmt.Sprintf("Unable to read %s", diag.Path)
	default:
		msg = fmt.Sprintf("Unable to read metadata for %s", diag.Path)
	}

	if diag.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, diag.Err)
	}

	fmt.Fprintf(p.errOut, "%s: %s\n", p.palette.alert("Invalid entry"), msg)
}

// Err returns the first error encountered writing report lines.
func (p *Printer) Err() error {
	return p.err
}

func (p *Printer) line(entry bifes.Entry) {
	if p.err != nil {
		return
	}

	if _, err := fmt.Fprintf(p.out, "%s bytes: %s\n", bifes.FormatSize(entry.Size), entry.Path); err != nil {
		p.err = fmt.Errorf("writing report: %w", err)
	}
}

// Result is the JSON document printed with --output json.
type Result struct {
	// Root is the scanned directory.
	Root string `json:"root"`
	// Threshold is the threshold in bytes.
	Threshold uint64 `json:"threshold"`
	// Total is the aggregate size of the root.
	Total uint64 `json:"total"`
	// Entries are the qualifying entries.
	Entries []bifes.Entry `json:"entries"`
}

// PrintJSON outputs the result in JSON format.
func PrintJSON(result Result, writer io.Writer) error {
	if result.Entries == nil {
		result.Entries = []bifes.Entry{}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintSummary outputs scan statistics in human-readable table format.
func PrintSummary(stats bifes.Stats, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintln(w, "\nStats:\t")
	fmt.Fprintf(w, "Total files:\t%s\n", humanize.Comma(stats.Files))
	fmt.Fprintf(w, "Total directories:\t%s\n", humanize.Comma(stats.Dirs))
	fmt.Fprintf(w, "Total size:\t%s (%d bytes)\n", humanize.IBytes(stats.TotalBytes), stats.TotalBytes)
	fmt.Fprintf(w, "Reported:\t%s\n", humanize.Comma(stats.Reported))
	fmt.Fprintf(w, "Skipped symlinks:\t%s\n", humanize.Comma(stats.Symlinks))
	fmt.Fprintf(w, "Skipped special files:\t%s\n", humanize.Comma(stats.Special))
	fmt.Fprintf(w, "Unreadable entries:\t%s\n", humanize.Comma(stats.Errors))
	fmt.Fprintf(w, "\nElapsed:\t%v\n", stats.Elapsed)

	return w.Flush()
}
