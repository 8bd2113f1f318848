package protocol

import (
	"math"
	"strconv"
)

// FormatFloat renders v with the fewest digits that round-trip. Integral
// values have no fractional part, so 30 prints as "30" and 2.5 as "2.5".
func FormatFloat(v float64) string {
	if v == 0 {
		// Avoid "-0".
		return "0"
	}
	if math.IsNaN(v) {
		return "NaN"
	}
	if math.IsInf(v, 1) {
		return "Infinity"
	}
	if math.IsInf(v, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatRectangle renders GRectangle(x, y, w, h).
func FormatRectangle(x, y, w, h float64) string {
	return "GRectangle(" + FormatFloat(x) + ", " + FormatFloat(y) + ", " + FormatFloat(w) + ", " + FormatFloat(h) + ")"
}

// FormatDimension renders GDimension(w, h).
func FormatDimension(w, h float64) string {
	return "GDimension(" + FormatFloat(w) + ", " + FormatFloat(h) + ")"
}

// FormatBool renders true or false.
func FormatBool(b bool) string {
	return strconv.FormatBool(b)
}
