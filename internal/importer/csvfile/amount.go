package csvfile

import (
	"strings"

	"github.com/shopspring/decimal"
)

var amountCleaner = strings.NewReplacer(",", "", "_", "", " ", "", "원", "", "₩", "")

// parseAmount parses a whole-unit amount such as "12,000", "-3500" or
// "12,000원". Fractions are rounded.
func parseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(amountCleaner.Replace(s))
	if err != nil {
		return 0, err
	}

	return d.Round(0).IntPart(), nil
}
