// Package parser converts the integer encodings found in CTF challenge files
// into *big.Int values.
package parser

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// ParseBigInt parses an integer from a decoded JSON value, CSV cell or flag.
//
// Strings with a 0x prefix, or containing hex letters, are read as base 16.
// Other strings are read as base 10. json.Number keeps full precision, so
// decoders should call UseNumber before handing values here.
func ParseBigInt(val interface{}) (*big.Int, error) {
	switch v := val.(type) {
	case string:
		return parseString(v)

	case json.Number:
		z, ok := new(big.Int).SetString(string(v), 10)
		if !ok {
			return nil, errors.Errorf("invalid number format: %s", v)
		}
		return z, nil

	case float64:
		// Loses precision above 2^53; only reached without UseNumber.
		z, acc := new(big.Float).SetFloat64(v).Int(nil)
		if acc != big.Exact {
			return nil, errors.Errorf("number is not an integer: %v", v)
		}
		return z, nil

	case int64:
		return big.NewInt(v), nil

	case int:
		return big.NewInt(int64(v)), nil

	case *big.Int:
		return new(big.Int).Set(v), nil

	default:
		return nil, errors.Errorf("unsupported type: %T", val)
	}
}

// ParseBigIntList parses a comma separated list such as "3,11" or "0x3, 0xb".
func ParseBigIntList(s string) ([]*big.Int, error) {
	parts := strings.Split(s, ",")
	out := make([]*big.Int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		z, err := parseString(part)
		if err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	if len(out) == 0 {
		return nil, errors.Errorf("empty integer list: %q", s)
	}
	return out, nil
}

func parseString(v string) (*big.Int, error) {
	s := strings.TrimSpace(v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	base := 10
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s = s[2:]
		base = 16
	case strings.ContainsAny(s, "abcdefABCDEF"):
		base = 16
	}

	if s == "" {
		return nil, errors.Errorf("invalid number format: %q", v)
	}

	z, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, errors.Errorf("invalid number format: %s", v)
	}
	if neg {
		z.Neg(z)
	}
	return z, nil
}
