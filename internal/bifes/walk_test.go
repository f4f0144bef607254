package bifes

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates a file of the given size under root, creating parent directories.
func writeFile(t *testing.T, root, rel string, size int) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{'x'}, size), 0o644))

	return path
}

// paths returns the slash-separated paths of the collected entries, in walk order.
func paths(c *Collector) []string {
	out := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = filepath.ToSlash(e.Path)
	}

	return out
}

func TestWalkScenario(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "A", 2048)
	writeFile(t, root, "B/C", 4096)

	c := &Collector{}
	total := ComputeAndReport(Config{Threshold: 3000, Root: root}, c)

	assert.EqualValues(t, 6144, total)
	assert.Empty(t, c.Diagnostics)
	assert.Equal(t, []Entry{
		{Path: filepath.Join(root, "B", "C"), Size: 4096, Kind: KindFile},
		{Path: filepath.Join(root, "B"), Size: 4096, Kind: KindDir},
	}, c.Entries)
}

func TestWalkAggregateIsSumOfFiles(t *testing.T) {
	root := t.TempDir()

	sizes := map[string]int{
		"a":             10,
		"b/c":           200,
		"b/d/e":         3000,
		"b/d/f/g":       1,
		"h/i":           0,
		"h/j/k/l/m/n/o": 77,
	}

	var want uint64
	for rel, size := range sizes {
		writeFile(t, root, rel, size)
		want += uint64(size)
	}

	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty", "deeper"), 0o755))

	c := &Collector{}
	w := NewWalker(c, nil)

	assert.Equal(t, want, w.Walk(Config{Threshold: ^uint64(0), Root: root}))
	assert.Empty(t, c.Entries)

	stats := w.Stats()
	assert.EqualValues(t, len(sizes), stats.Files)
	assert.EqualValues(t, 11, stats.Dirs)
	assert.Equal(t, want, stats.TotalBytes)
}

func TestWalkThresholdIsInclusive(t *testing.T) {
	root := t.TempDir()
	exact := writeFile(t, root, "exact", 100)
	writeFile(t, root, "short", 99)

	c := &Collector{}
	ComputeAndReport(Config{Threshold: 100, Root: root}, c)

	assert.Equal(t, []Entry{{Path: exact, Size: 100, Kind: KindFile}}, c.Entries)
}

func TestWalkFileAndDirectoryDecisionsAreIndependent(t *testing.T) {
	root := t.TempDir()
	big := writeFile(t, root, "dir/big", 500)

	c := &Collector{}
	total := ComputeAndReport(Config{Threshold: 500, Root: root}, c)

	assert.EqualValues(t, 500, total)
	assert.Equal(t, []string{filepath.ToSlash(big), filepath.ToSlash(filepath.Join(root, "dir"))}, paths(c))

	writeFile(t, root, "other/small", 10)

	c = &Collector{}
	ComputeAndReport(Config{Threshold: 501, Root: root}, c)

	assert.Empty(t, c.Entries)
}

func TestWalkEmptyDirectories(t *testing.T) {
	root := t.TempDir()
	empty := filepath.Join(root, "empty")
	require.NoError(t, os.Mkdir(empty, 0o755))

	c := &Collector{}
	assert.Zero(t, ComputeAndReport(Config{Threshold: 0, Root: root}, c))
	assert.Equal(t, []Entry{{Path: empty, Size: 0, Kind: KindDir}}, c.Entries)

	c = &Collector{}
	ComputeAndReport(Config{Threshold: 1, Root: root}, c)
	assert.Empty(t, c.Entries)
}

func TestWalkIgnoresSymlinks(t *testing.T) {
	outside := t.TempDir()
	target := writeFile(t, outside, "huge", 8192)

	root := t.TempDir()
	writeFile(t, root, "dir/small", 16)

	if err := os.Symlink(target, filepath.Join(root, "dir", "link")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	require.NoError(t, os.Symlink(outside, filepath.Join(root, "linkdir")))
	require.NoError(t, os.Symlink(root, filepath.Join(root, "dir", "loop")))

	c := &Collector{}
	w := NewWalker(c, nil)

	assert.EqualValues(t, 16, w.Walk(Config{Threshold: 0, Root: root}))
	assert.Equal(t, []string{
		filepath.ToSlash(filepath.Join(root, "dir", "small")),
		filepath.ToSlash(filepath.Join(root, "dir")),
	}, paths(c))
	assert.EqualValues(t, 3, w.Stats().Symlinks)
}

func TestWalkUnreadableDirectory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}

	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	root := t.TempDir()
	visible := writeFile(t, root, "a/visible", 4096)
	writeFile(t, root, "locked/hidden", 4096)

	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	c := &Collector{}
	total := ComputeAndReport(Config{Threshold: 4096, Root: root}, c)

	assert.EqualValues(t, 4096, total)
	assert.Equal(t, []string{
		filepath.ToSlash(visible),
		filepath.ToSlash(filepath.Join(root, "a")),
	}, paths(c))

	require.Len(t, c.Diagnostics, 1)
	assert.Equal(t, locked, c.Diagnostics[0].Path)
	assert.Equal(t, OpList, c.Diagnostics[0].Op)
	assert.ErrorIs(t, c.Diagnostics[0].Err, os.ErrPermission)
}

func TestWalkUnreadableMetadata(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}

	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	root := t.TempDir()
	hidden := writeFile(t, root, "noexec/f", 100)
	ok := writeFile(t, root, "ok", 50)

	// Listable but not searchable: names can be read, their metadata cannot.
	noexec := filepath.Join(root, "noexec")
	require.NoError(t, os.Chmod(noexec, 0o444))
	t.Cleanup(func() { _ = os.Chmod(noexec, 0o755) })

	c := &Collector{}
	w := NewWalker(c, nil)

	assert.EqualValues(t, 50, w.Walk(Config{Threshold: 1, Root: root}))
	assert.Equal(t, []Entry{{Path: ok, Size: 50, Kind: KindFile}}, c.Entries)

	require.Len(t, c.Diagnostics, 1)
	assert.Equal(t, hidden, c.Diagnostics[0].Path)
	assert.Equal(t, OpStat, c.Diagnostics[0].Op)
	assert.ErrorIs(t, c.Diagnostics[0].Err, os.ErrPermission)
	assert.EqualValues(t, 1, w.Stats().Files)
	assert.EqualValues(t, 1, w.Stats().Errors)
}

func TestWalkStatsAccumulate(t *testing.T) {
	first := t.TempDir()
	writeFile(t, first, "f", 10)

	second := t.TempDir()
	writeFile(t, second, "g", 20)

	w := NewWalker(&Collector{}, nil)
	w.Walk(Config{Root: first})
	w.Walk(Config{Root: second})

	stats := w.Stats()
	assert.EqualValues(t, 2, stats.Files)
	assert.EqualValues(t, 30, stats.TotalBytes)
}

func TestWalkMissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	c := &Collector{}
	w := NewWalker(c, nil)

	assert.Zero(t, w.Walk(Config{Threshold: 0, Root: missing}))
	assert.Empty(t, c.Entries)
	require.Len(t, c.Diagnostics, 1)
	assert.Equal(t, missing, c.Diagnostics[0].Path)
	assert.ErrorIs(t, c.Diagnostics[0].Err, os.ErrNotExist)
	assert.EqualValues(t, 1, w.Stats().Errors)
}

func TestWalkRootIsFile(t *testing.T) {
	file := writeFile(t, t.TempDir(), "file", 10)

	c := &Collector{}
	assert.Zero(t, ComputeAndReport(Config{Threshold: 0, Root: file}, c))
	require.Len(t, c.Diagnostics, 1)
	assert.Equal(t, OpList, c.Diagnostics[0].Op)
}

func TestWalkDebugLogging(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "f", 1)

	var buf bytes.Buffer

	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)

	NewWalker(&Collector{}, logrus.NewEntry(logger)).Walk(Config{Root: root})

	assert.Contains(t, buf.String(), "entering directory")
}

func TestCollectorLargest(t *testing.T) {
	c := &Collector{Entries: []Entry{
		{Path: "a", Size: 1},
		{Path: "b", Size: 3},
		{Path: "c", Size: 2},
		{Path: "d", Size: 3},
	}}

	largest := c.Largest()

	got := make([]string, len(largest))
	for i, e := range largest {
		got[i] = e.Path
	}

	assert.Equal(t, []string{"b", "d", "c", "a"}, got)
	assert.Equal(t, "a", c.Entries[0].Path)
}
