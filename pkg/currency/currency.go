// Package currency converts store amounts into the unit formats payment
// gateways expect. All functions are pure; conversion results are
// informational metadata and never touch an order's own ledger.
package currency

import (
	"fmt"
	"strconv"
)

// zeroDecimal lists currencies whose minor unit equals the major unit.
// Everything else, including IDR, is two-decimal.
var zeroDecimal = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true,
	"JPY": true, "KMF": true, "KRW": true, "MGA": true,
	"PYG": true, "RWF": true, "UGX": true, "VND": true,
	"VUV": true, "XAF": true, "XOF": true, "XPF": true,
}

// IsZeroDecimal reports whether the currency has no minor unit.
func IsZeroDecimal(code string) bool {
	return zeroDecimal[code]
}

// ToGatewayUnits converts a major-unit amount into gateway minor units.
func ToGatewayUnits(major int64, code string) int64 {
	if zeroDecimal[code] {
		return major
	}
	return major * 100
}

// FromGatewayUnits converts gateway minor units back into major units,
// truncating any sub-unit remainder.
func FromGatewayUnits(minor int64, code string) int64 {
	if zeroDecimal[code] {
		return minor
	}
	return minor / 100
}

// ConvertedAmount is what a gateway call carries for an order whose
// currency the provider does not support.
type ConvertedAmount struct {
	Currency   string // substituted currency code
	MinorUnits int64  // converted amount in minor units of Currency
	Value      string // decimal string as gateways expect, e.g. "9.68"
}

// ConvertForGateway substitutes target for the order currency at the
// given fixed rate (units of the order currency per one unit of target).
// Rounds up to the nearest minor unit and never charges less than one
// minor unit.
func ConvertForGateway(amountMajor int64, target string, rate int64) (ConvertedAmount, error) {
	if rate <= 0 {
		return ConvertedAmount{}, fmt.Errorf("conversion rate must be positive, got %d", rate)
	}
	if amountMajor < 0 {
		return ConvertedAmount{}, fmt.Errorf("amount must not be negative, got %d", amountMajor)
	}

	factor := int64(100)
	if zeroDecimal[target] {
		factor = 1
	}

	// ceil(amount * factor / rate), integer arithmetic only
	minor := (amountMajor*factor + rate - 1) / rate
	if minor < 1 {
		minor = 1
	}

	return ConvertedAmount{
		Currency:   target,
		MinorUnits: minor,
		Value:      FormatValue(minor, target),
	}, nil
}

// FormatValue renders minor units as the decimal string gateways expect.
func FormatValue(minor int64, code string) string {
	if zeroDecimal[code] {
		return strconv.FormatInt(minor, 10)
	}
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
