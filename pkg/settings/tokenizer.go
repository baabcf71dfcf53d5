package settings

import (
	"errors"
	"fmt"
	"io"

	"github.com/itohio/goshot/pkg/fixed"
)

const (
	// MaxNameLen is the longest accepted record name.
	MaxNameLen = 16
	// MaxValueLen is the longest accepted record value.
	MaxValueLen = 8
	// DefaultByteBudget bounds how much of a stream a single load reads.
	DefaultByteBudget = 64 << 10
)

type state int

const (
	seekOpen state = iota
	readName
	readValue
)

// Record is one [name=value] entry. Offset is the position of its opening bracket.
type Record struct {
	Name   string
	Value  string
	Offset int64
}

// Tokenizer splits a byte stream into records.
type Tokenizer struct {
	r      io.ByteReader
	budget int64

	state  state
	name   fixed.String
	value  fixed.String
	offset int64
	start  int64
	err    error // sticky terminal error
}

// NewTokenizer reads records from r, consuming at most budget bytes. A budget <= 0
// disables the limit.
func NewTokenizer(r io.ByteReader, budget int64) *Tokenizer {
	return &Tokenizer{
		r:      r,
		budget: budget,
		name:   fixed.New(MaxNameLen),
		value:  fixed.New(MaxValueLen),
	}
}

// Offset returns the number of bytes consumed so far.
func (t *Tokenizer) Offset() int64 {
	return t.offset
}

// Next returns the next record.
//
// A record that cannot be used is returned together with an error wrapping
// ErrMalformedRecord; tokenizing may continue after it. The end of the stream is io.EOF.
// ErrByteBudget and read errors are terminal and returned by every later call.
func (t *Tokenizer) Next() (Record, error) {
	if t.err != nil {
		return Record{}, t.err
	}

	for {
		c, err := t.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if t.state == seekOpen {
					return Record{}, io.EOF
				}
				rec := t.finish()
				return rec, fmt.Errorf("record at offset %d: %w", rec.Offset, ErrTruncatedRecord)
			}
			t.err = err
			return Record{}, err
		}
		if t.budget > 0 && t.offset >= t.budget {
			t.err = fmt.Errorf("after %d bytes: %w", t.offset, ErrByteBudget)
			return Record{}, t.err
		}
		t.offset++

		switch t.state {
		case seekOpen:
			if c == '[' {
				t.begin()
			}

		case readName:
			switch c {
			case '=':
				t.state = readValue
			case ']':
				rec := t.finish()
				return rec, fmt.Errorf("record %q at offset %d: missing '=': %w", rec.Name, rec.Offset, ErrMalformedRecord)
			case '[':
				rec := t.finish()
				t.begin()
				return rec, fmt.Errorf("record at offset %d: unterminated: %w", rec.Offset, ErrMalformedRecord)
			default:
				t.name.AppendByte(c)
			}

		case readValue:
			switch c {
			case ']':
				overflow := t.name.Overflowed() || t.value.Overflowed()
				rec := t.finish()
				if overflow {
					return rec, fmt.Errorf("record %q at offset %d: name or value longer than %d/%d bytes: %w",
						rec.Name, rec.Offset, MaxNameLen, MaxValueLen, ErrMalformedRecord)
				}
				return rec, nil
			case '[':
				rec := t.finish()
				t.begin()
				return rec, fmt.Errorf("record %q at offset %d: unterminated: %w", rec.Name, rec.Offset, ErrMalformedRecord)
			default:
				t.value.AppendByte(c)
			}
		}
	}
}

// begin starts a record at the bracket just consumed.
func (t *Tokenizer) begin() {
	t.state = readName
	t.start = t.offset - 1
	t.name.Reset()
	t.value.Reset()
}

// finish returns what was accumulated for the current record and rearms for the next one.
func (t *Tokenizer) finish() Record {
	rec := Record{
		Name:   t.name.String(),
		Value:  t.value.String(),
		Offset: t.start,
	}
	t.state = seekOpen
	t.name.Reset()
	t.value.Reset()
	return rec
}
