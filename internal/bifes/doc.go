// Package bifes finds big files and directories.
//
// It walks a directory tree depth-first without following symbolic links,
// computes the aggregate size of every directory, and reports each file or
// directory whose size meets a threshold. Unreadable entries are reported as
// diagnostics and skipped; they never abort the walk.
package bifes
