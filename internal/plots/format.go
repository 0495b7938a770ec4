package plots

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const lakh = 100000

// FormatLakhs renders an amount in lakhs with one decimal, e.g. ₹85.0L.
func FormatLakhs(symbol string, amount float64) string {
	return fmt.Sprintf("%s%.1fL", symbol, amount/lakh)
}

// FormatINR renders an amount with Indian digit grouping (12,34,567).
// Paise are shown only when non-zero.
func FormatINR(symbol string, amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	paise := int64(math.Round(amount * 100))
	whole, frac := paise/100, paise%100
	out := sign + symbol + groupIndian(strconv.FormatInt(whole, 10))
	if frac != 0 {
		out += fmt.Sprintf(".%02d", frac)
	}
	return out
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
