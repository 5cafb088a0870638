package model

import (
	"math"
	"strconv"
	"strings"
)

var sizeUnits = []struct {
	suffix string
	mult   float64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseFileSize converts a free-text size like "4.5 GB" into bytes.
// A bare number is read as megabytes. Anything unparseable yields nil.
func ParseFileSize(text string) *int64 {
	s := strings.ToUpper(strings.TrimSpace(text))
	if s == "" {
		return nil
	}

	mult := float64(1 << 20)
	for _, unit := range sizeUnits {
		if strings.Contains(s, unit.suffix) {
			mult = unit.mult
			s = strings.Replace(s, unit.suffix, "", 1)
			break
		}
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	bytes := math.Round(v * mult)
	if bytes >= math.MaxInt64 {
		return nil
	}
	n := int64(bytes)
	return &n
}
