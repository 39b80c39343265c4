package model

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultFiat is the display currency used when none has been selected.
const DefaultFiat = "USD"

// ErrUnsupportedFiat is returned for currency codes outside the supported set.
var ErrUnsupportedFiat = errors.New("unsupported fiat currency")

// supportedFiats lists the currencies the ticker endpoint can convert to.
var supportedFiats = map[string]struct{}{
	"AUD": {}, "BRL": {}, "CAD": {}, "CHF": {}, "CLP": {}, "CNY": {},
	"CZK": {}, "DKK": {}, "EUR": {}, "GBP": {}, "HKD": {}, "HUF": {},
	"IDR": {}, "ILS": {}, "INR": {}, "JPY": {}, "KRW": {}, "MXN": {},
	"MYR": {}, "NOK": {}, "NZD": {}, "PHP": {}, "PKR": {}, "PLN": {},
	"RUB": {}, "SEK": {}, "SGD": {}, "THB": {}, "TRY": {}, "TWD": {},
	"UAH": {}, "USD": {}, "ZAR": {},
}

// IsSupportedFiat reports whether code (any case) is a supported currency.
func IsSupportedFiat(code string) bool {
	_, ok := supportedFiats[strings.ToUpper(code)]
	return ok
}

// NormalizeFiat validates code and returns it upper-cased.
func NormalizeFiat(code string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(code))
	if !IsSupportedFiat(upper) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFiat, code)
	}
	return upper, nil
}
