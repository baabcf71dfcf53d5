package settings

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Warning is a record that was read but not applied.
type Warning struct {
	Record Record
	Err    error
}

func (w Warning) Error() string {
	return w.Err.Error()
}

func (w Warning) Unwrap() error {
	return w.Err
}

// Report summarises a Decode.
type Report struct {
	Applied  int
	Warnings []Warning
}

// Count returns how many warnings match target.
func (r Report) Count(target error) int {
	n := 0
	for _, w := range r.Warnings {
		if errors.Is(w.Err, target) {
			n++
		}
	}
	return n
}

type options struct {
	budget int64
	logger zerolog.Logger
}

// Option configures Decode.
type Option func(*options)

// WithByteBudget bounds the number of bytes read. n <= 0 disables the bound.
func WithByteBudget(n int64) Option {
	return func(o *options) { o.budget = n }
}

// WithLogger reports warnings to logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// ParseValue parses a record value as an unsigned 8-bit decimal. Surrounding blanks are
// ignored. Non-numeric text yields ErrValueParse and values above 255 ErrValueRange.
func ParseValue(text string) (uint8, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("empty: %w", ErrValueParse)
	}
	v, err := strconv.ParseUint(text, 10, 8)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%q exceeds 255: %w", text, ErrValueRange)
		}
		return 0, fmt.Errorf("%q: %w", text, ErrValueParse)
	}
	return uint8(v), nil
}

// Apply stores value into the field named name. On error s is left unchanged.
func Apply(s *Settings, name, value string) error {
	f, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownSetting)
	}
	v, err := ParseValue(value)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*f.Ptr(s) = v
	return nil
}

// Decode reads records from r and applies them to s.
//
// Unusable records are collected in the report and skipped. Only read errors and context
// cancellation are returned; s keeps whatever was applied before them.
func Decode(ctx context.Context, r io.Reader, s *Settings, opts ...Option) (Report, error) {
	o := options{budget: DefaultByteBudget, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	tok := NewTokenizer(&ctxByteReader{ctx: ctx, r: br}, o.budget)

	var report Report
	warn := func(rec Record, err error) {
		report.Warnings = append(report.Warnings, Warning{Record: rec, Err: err})
		o.logger.Warn().Err(err).Str("name", rec.Name).Int64("offset", rec.Offset).Msg("setting skipped")
	}

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		rec, err := tok.Next()
		switch {
		case err == nil:
			if err := Apply(s, rec.Name, rec.Value); err != nil {
				warn(rec, err)
				continue
			}
			report.Applied++
			o.logger.Debug().Str("name", rec.Name).Str("value", rec.Value).Msg("setting applied")
		case errors.Is(err, io.EOF):
			return report, nil
		case errors.Is(err, ErrMalformedRecord):
			warn(rec, err)
		case errors.Is(err, ErrByteBudget):
			warn(rec, err)
			return report, nil
		case ctx.Err() != nil:
			return report, ctx.Err()
		default:
			return report, fmt.Errorf("failed to read settings: %w", err)
		}
	}
}

// Encode writes one record per field, in field order, each on its own line.
func Encode(w io.Writer, s Settings) error {
	buf := make([]byte, 0, 128)
	for _, f := range Fields {
		buf = append(buf, '[')
		buf = append(buf, f.Name...)
		buf = append(buf, '=')
		buf = strconv.AppendUint(buf, uint64(*f.Ptr(&s)), 10)
		buf = append(buf, ']', '\n')
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// ctxCheckInterval is how many bytes ctxByteReader reads between context checks.
const ctxCheckInterval = 4096

// ctxByteReader stops reading once ctx is done, even in the middle of a record.
type ctxByteReader struct {
	ctx context.Context
	r   io.ByteReader
	n   int
}

func (c *ctxByteReader) ReadByte() (byte, error) {
	if c.n%ctxCheckInterval == 0 {
		if err := c.ctx.Err(); err != nil {
			return 0, err
		}
	}
	c.n++
	return c.r.ReadByte()
}
