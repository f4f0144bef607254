package cli

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/idelchi/bifes/internal/bifes"
)

func logic(options Options, stdout, stderr io.Writer) error {
	log := newLogger(options.Debug, stderr)

	log.WithFields(logrus.Fields{
		"root":      options.Root,
		"threshold": options.Threshold,
		"output":    options.Output,
		"sort":      options.Sorted,
	}).Debug("resolved configuration")

	printer := &Printer{
		out:     stdout,
		errOut:  stderr,
		palette: newPalette(stderr, options.NoColor),
	}

	// Entries are only streamed for plain unsorted text.
	if options.Sorted || options.Output == "json" {
		printer.held = &bifes.Collector{}
	}

	walker := bifes.NewWalker(printer, log)
	total := walker.Walk(options.Config)

	log.WithField("total", total).Debug("scan complete")

	if held := printer.held; held != nil {
		entries := held.Entries
		if options.Sorted {
			entries = held.Largest()
		}

		if options.Output == "json" {
			if err := PrintJSON(Result{
				Root:      options.Root,
				Threshold: options.Threshold,
				Total:     total,
				Entries:   entries,
			}, stdout); err != nil {
				return err
			}
		} else {
			for _, entry := range entries {
				printer.line(entry)
			}
		}
	}

	if err := printer.Err(); err != nil {
		return err
	}

	if options.Summary {
		return PrintSummary(walker.Stats(), stderr)
	}

	return nil
}
