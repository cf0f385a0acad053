package currency

import (
	"fmt"
	"math"
)

// FormatUSD renders a whole-dollar amount such as "$1,234" or "-$80".
func FormatUSD(amount float64) string {
	rounded := math.Round(amount)

	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	result := "$" + groupThousands(fmt.Sprintf("%.0f", rounded), ',')
	if negative {
		result = "-" + result
	}
	return result
}

func groupThousands(digits string, sep byte) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}

	out := make([]byte, 0, n+(n-1)/3)
	lead := n % 3
	if lead == 0 {
		lead = 3
	}
	out = append(out, digits[:lead]...)
	for i := lead; i < n; i += 3 {
		out = append(out, sep)
		out = append(out, digits[i:i+3]...)
	}
	return string(out)
}
