package bifes

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// frame is a directory whose children are being processed.
type frame struct {
	cfg     Config
	entries []fs.DirEntry
	next    int
	total   uint64
}

// Walker computes aggregate sizes for a directory tree and reports qualifying entries.
// A Walker is not safe for concurrent use.
type Walker struct {
	reporter Reporter
	log      *logrus.Entry
	stats    Stats
}

// NewWalker creates a Walker sending its output to reporter.
// Debug tracing goes to log; a nil log discards it.
func NewWalker(reporter Reporter, log *logrus.Entry) *Walker {
	if log == nil {
		discard := logrus.New()
		discard.Out = io.Discard
		log = logrus.NewEntry(discard)
	}

	return &Walker{reporter: reporter, log: log}
}

// ComputeAndReport walks cfg.Root, reports every qualifying descendant to reporter
// and returns the aggregate size of cfg.Root.
func ComputeAndReport(cfg Config, reporter Reporter) uint64 {
	return NewWalker(reporter, nil).Walk(cfg)
}

// Walk processes cfg.Root depth-first and returns its aggregate size: the sum of all
// regular files beneath it, excluding anything reached through a symbolic link and
// anything whose metadata could not be read.
//
// A directory is reported after all of its children, once its aggregate is known.
// Children are visited in listing order. Pending directories are kept on an explicit
// stack, so the depth of the tree does not grow the call stack.
func (w *Walker) Walk(cfg Config) uint64 {
	start := time.Now()

	stack := []*frame{w.open(cfg)}

	var total uint64

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if top.next == len(top.entries) {
			stack = stack[:len(stack)-1]

			if len(stack) == 0 {
				total = top.total

				break
			}

			parent := stack[len(stack)-1]
			w.qualify(parent.cfg, top.cfg.Root, top.total, KindDir)
			parent.total += top.total

			continue
		}

		entry := top.entries[top.next]
		top.next++

		path := filepath.Join(top.cfg.Root, entry.Name())

		if entry.Type()&fs.ModeSymlink != 0 {
			w.skipSymlink(path)

			continue
		}

		info, err := entry.Info()
		if err != nil {
			w.diagnose(path, OpStat, err)

			continue
		}

		switch mode := info.Mode(); {
		case mode&fs.ModeSymlink != 0:
			w.skipSymlink(path)
		case mode.IsDir():
			w.stats.Dirs++
			stack = append(stack, w.open(top.cfg.Child(path)))
		case mode.IsRegular():
			w.stats.Files++

			size := uint64(info.Size()) //nolint:gosec // Regular file sizes are never negative
			w.qualify(top.cfg, path, size, KindFile)
			top.total += size
		default:
			w.stats.Special++
			w.log.WithField("path", path).WithField("mode", mode.String()).Debug("skipping special file")
		}
	}

	w.stats.TotalBytes += total
	w.stats.Elapsed += time.Since(start)

	return total
}

// Stats returns the counters accumulated by all walks of w.
func (w *Walker) Stats() Stats {
	return w.stats
}

// open lists the directory of cfg. On failure the frame holds whatever was read,
// possibly nothing, and a diagnostic is emitted.
func (w *Walker) open(cfg Config) *frame {
	w.log.WithField("path", cfg.Root).Debug("entering directory")

	entries, err := os.ReadDir(cfg.Root)
	if err != nil {
		w.diagnose(cfg.Root, OpList, err)
	}

	return &frame{cfg: cfg, entries: entries}
}

func (w *Walker) qualify(cfg Config, path string, size uint64, kind Kind) {
	if !cfg.Qualifies(size) {
		return
	}

	w.stats.Reported++
	w.reporter.Report(Entry{Path: path, Size: size, Kind: kind})
}

func (w *Walker) skipSymlink(path string) {
	w.stats.Symlinks++
	w.log.WithField("path", path).Debug("skipping symlink")
}

func (w *Walker) diagnose(path string, op Op, err error) {
	w.stats.Errors++
	w.log.WithField("path", path).WithError(err).Debug("skipping unreadable entry")
	w.reporter.Diagnose(Diagnostic{Path: path, Op: op, Err: err})
}
