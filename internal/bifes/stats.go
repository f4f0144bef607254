package bifes

import (
	"cmp"
	"slices"
	"time"
)

// DefaultThreshold is the threshold used when none is given: 1 MiB.
const DefaultThreshold uint64 = 1 << 20

// Config is the input of a walk.
type Config struct {
	// Threshold is the minimum size in bytes (inclusive) an entry must have to be reported.
	Threshold uint64 `json:"threshold"`
	// Root is the directory to walk.
	Root string `json:"root"`
}

// Child returns the configuration used to descend into the directory at path.
// The threshold is inherited unchanged.
func (c Config) Child(path string) Config {
	return Config{Threshold: c.Threshold, Root: path}
}

// Qualifies reports whether size meets the threshold.
func (c Config) Qualifies(size uint64) bool {
	return size >= c.Threshold
}

// Kind is the kind of a reported entry.
type Kind string

const (
	// KindFile is a regular file.
	KindFile Kind = "file"
	// KindDir is a directory, sized by its aggregate.
	KindDir Kind = "dir"
)

// Entry is a qualifying file or directory.
type Entry struct {
	// Path is the file or directory path.
	Path string `json:"path"`
	// Size is the file size, or the aggregate size for directories.
	Size uint64 `json:"size"`
	// Kind tells files and directories apart.
	Kind Kind `json:"kind"`
}

// Op is the filesystem operation a diagnostic refers to.
type Op string

const (
	// OpList is listing the children of a directory.
	OpList Op = "list"
	// OpStat is reading the metadata of a single entry.
	OpStat Op = "stat"
)

// Diagnostic describes an entry that could not be read and was skipped.
type Diagnostic struct {
	Path string
	Op   Op
	Err  error
}

// Reporter receives the output of a walk as it is produced.
type Reporter interface {
	// Report is called for every qualifying entry.
	Report(entry Entry)
	// Diagnose is called for every entry or directory that was skipped because it could not be read.
	Diagnose(diag Diagnostic)
}

// Stats holds counters for a finished walk.
type Stats struct {
	// Files is the number of regular files sized.
	Files int64 `json:"files"`
	// Dirs is the number of directories descended into, excluding the root.
	Dirs int64 `json:"dirs"`
	// Symlinks is the number of symbolic links ignored.
	Symlinks int64 `json:"symlinks"`
	// Special is the number of entries that were neither file, directory nor symlink.
	Special int64 `json:"special"`
	// Reported is the number of qualifying entries.
	Reported int64 `json:"reported"`
	// Errors is the number of diagnostics emitted.
	Errors int64 `json:"errors"`
	// TotalBytes is the aggregate size of the walked roots.
	TotalBytes uint64 `json:"total_bytes"`
	// Elapsed is the time taken by the walk.
	Elapsed time.Duration `json:"elapsed"`
}

// Collector is a Reporter that keeps everything in memory.
type Collector struct {
	Entries     []Entry
	Diagnostics []Diagnostic
}

// Report appends the entry.
func (c *Collector) Report(entry Entry) {
	c.Entries = append(c.Entries, entry)
}

// Diagnose appends the diagnostic.
func (c *Collector) Diagnose(diag Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, diag)
}

// Largest returns the collected entries ordered by size, largest first.
// Entries of equal size keep their walk order.
func (c *Collector) Largest() []Entry {
	sorted := make([]Entry, len(c.Entries))
	copy(sorted, c.Entries)

	slices.SortStableFunc(sorted, func(a, b Entry) int {
		return cmp.Compare(b.Size, a.Size)
	})

	return sorted
}
