package bifes

import (
	"strconv"

	"github.com/dustin/go-humanize"
)

// units lists the display units from largest to smallest.
// TB is the ceiling: anything larger is still shown in TB.
//
//nolint:gochecknoglobals // Lookup table
var units = []struct {
	size uint64
	name string
}{
	{humanize.TiByte, "TB"},
	{humanize.GiByte, "GB"},
	{humanize.MiByte, "MB"},
	{humanize.KiByte, "KB"},
}

// FormatSize renders a byte count with the largest 1024-based unit it reaches,
// truncating rather than rounding: 1023 is "1023 bytes", 1536 is "1 KB".
func FormatSize(bytes uint64) string {
	for _, u := range units {
		if bytes >= u.size {
			return strconv.FormatUint(bytes/u.size, 10) + " " + u.name
		}
	}

	return strconv.FormatUint(bytes, 10) + " bytes"
}
