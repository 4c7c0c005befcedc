package exporter

import (
	"math"
	"strconv"
	"strings"
)

// formatFloat renders a finite float the way a repr-style formatter does:
// shortest round-trip digits, always with a decimal point or exponent, and
// exponent notation below 1e-4 or from 1e16 up.
func formatFloat(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
