package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"4.5 GB", int64(math.Round(4.5 * (1 << 30)))},
		{"10", 10 << 20},
		{"700mb", 700 << 20},
		{"512 KB", 512 << 10},
		{"12 B", 12},
		{" 1.5gb ", int64(math.Round(1.5 * (1 << 30)))},
		{"0.3 KB", 307},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseFileSize(tt.in)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseFileSizeUnknown(t *testing.T) {
	for _, in := range []string{"", "   ", "big", "GB", "-3 MB", "NaN", "Inf GB", "8589934592 GB"} {
		assert.Nil(t, ParseFileSize(in), in)
	}
}
