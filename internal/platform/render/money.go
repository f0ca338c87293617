package render

import (
	"math"
	"strconv"
	"strings"
)

// FormatARS formats an amount the way the es-AR locale does: thousands
// separated by periods, two decimals after a comma, e.g. $1.234,56.
func FormatARS(amount float64) string {
	neg := amount < 0 || math.Signbit(amount)
	cents := int64(math.Round(math.Abs(amount) * 100))
	whole := cents / 100
	frac := cents % 100

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	if neg && cents != 0 {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	b.WriteByte(',')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))
	return b.String()
}
