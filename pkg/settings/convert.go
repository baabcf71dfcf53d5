package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ToFloat parses a record value as a 32-bit float.
func ToFloat(value string) (float32, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 32)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", value, ErrValueParse)
	}
	return float32(f), nil
}

// ToLong parses a record value as a signed 32-bit integer.
func ToLong(value string) (int32, error) {
	l, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%q: %w", value, ErrValueRange)
		}
		return 0, fmt.Errorf("%q: %w", value, ErrValueParse)
	}
	return int32(l), nil
}

// ToBoolean parses a record value as an integer flag: 1 is true, any other integer false.
func ToBoolean(value string) (bool, error) {
	l, err := ToLong(value)
	if err != nil {
		return false, err
	}
	return l == 1, nil
}
