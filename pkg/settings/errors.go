package settings

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord marks a record that is not a well formed [name=value].
	ErrMalformedRecord = errors.New("malformed record")
	// ErrTruncatedRecord marks a record cut off by the end of the stream. It is a
	// malformed record.
	ErrTruncatedRecord = fmt.Errorf("truncated record: %w", ErrMalformedRecord)
	// ErrUnknownSetting marks a record whose name matches no field.
	ErrUnknownSetting = errors.New("unknown setting")
	// ErrValueParse marks a value that is not an unsigned decimal.
	ErrValueParse = errors.New("invalid value")
	// ErrValueRange marks a value that does not fit the field.
	ErrValueRange = errors.New("value out of range")
	// ErrByteBudget marks a stream that exceeded the read budget.
	ErrByteBudget = errors.New("byte budget exceeded")
)
