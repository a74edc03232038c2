package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHumanReadableSize(t *testing.T) {
	tests := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{"zero", 0, "0 B"},
		{"negative", -5, "0 B"},
		{"bytes", 512, "512 B"},
		{"kilobytes", 1024, "1 KB"},
		{"fractional kilobytes", 1536, "1.5 KB"},
		{"megabytes", 1048576, "1 MB"},
		{"two decimals", 1105197056, "1.03 GB"},
		{"terabytes", 1099511627776, "1 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HumanReadableSize(tt.bytes))
		})
	}
}

func TestMegabytesToBytes(t *testing.T) {
	assert.Equal(t, int64(10*1024*1024), MegabytesToBytes(10))
}
