package fees

import (
	"strconv"

	"campus-assistant/internal/model"
)

// Classify renders a fee record into the display label used by the views.
func Classify(f model.FeeStatus) string {
	if f.Due <= 0 {
		return "paid in full"
	}
	return "outstanding balance: " + formatAmount(f.Due)
}

// formatAmount trims trailing zeros so whole amounts print as integers.
func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
