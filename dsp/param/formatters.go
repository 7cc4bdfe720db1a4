package param

import "strconv"

// Rounded returns a formatter that prints plain values with the given
// number of decimals. Negative decimal counts are treated as zero.
func Rounded(decimals int) func(float64) string {
	if decimals < 0 {
		decimals = 0
	}
	return func(v float64) string {
		return strconv.FormatFloat(v, 'f', decimals, 64)
	}
}
