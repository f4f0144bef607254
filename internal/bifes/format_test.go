package bifes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	type scenario struct {
		bytes    uint64
		expected string
	}

	scenarios := []scenario{
		{0, "0 bytes"},
		{1, "1 bytes"},
		{1023, "1023 bytes"},
		{1024, "1 KB"},
		{2047, "1 KB"},
		{1048575, "1023 KB"},
		{1048576, "1 MB"},
		{1073741824, "1 GB"},
		{1 << 40, "1 TB"},
		{1 << 50, "1024 TB"},
		{^uint64(0), "16777215 TB"},
	}

	for _, s := range scenarios {
		assert.Equal(t, s.expected, FormatSize(s.bytes), "FormatSize(%d)", s.bytes)
	}
}
