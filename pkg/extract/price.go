package extract

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Bounds on a raw minor-unit price. Values outside them cannot be real
// prices and would expand to enormous strings when rendered.
const (
	maxExponent = 18
	maxDigits   = 20
)

// MajorUnits converts a raw upstream price, expressed in hundredths of the
// currency unit, into whole units. Numbers and numeric strings are accepted;
// anything else, negative, or implausibly large or precise reports false.
func MajorUnits(raw any) (decimal.Decimal, bool) {
	minor, ok := toDecimal(raw)
	if !ok || !plausible(minor) {
		return decimal.Decimal{}, false
	}
	return minor.Shift(-2), true
}

// plausible checks the exponent before anything that would rescale d.
func plausible(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp > maxExponent || exp < -maxExponent {
		return false
	}
	if d.NumDigits() > maxDigits {
		return false
	}
	return !d.IsNegative()
}

func toDecimal(raw any) (decimal.Decimal, bool) {
	switch v := raw.(type) {
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(v), true
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat32(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	default:
		return decimal.Decimal{}, false
	}
}

// scalarString renders identity-like scalars. Numbers keep their JSON text.
func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	default:
		return "", false
	}
}
