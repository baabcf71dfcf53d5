// Package fixed provides a bounded, allocation-free byte string.
package fixed

// MaxCapacity is the largest limit a String can be created with.
const MaxCapacity = 32

// String accumulates bytes up to a fixed limit. Appends past the limit are dropped and
// the string is marked as overflowed until Reset.
type String struct {
	buf      [MaxCapacity]byte
	n        int
	limit    int
	overflow bool
}

// New returns an empty String holding at most limit bytes. The limit is clamped to
// [0, MaxCapacity].
func New(limit int) String {
	if limit < 0 {
		limit = 0
	}
	if limit > MaxCapacity {
		limit = MaxCapacity
	}
	return String{limit: limit}
}

// AppendByte appends c and reports whether it fit.
func (s *String) AppendByte(c byte) bool {
	if s.n >= s.limit {
		s.overflow = true
		return false
	}
	s.buf[s.n] = c
	s.n++
	return true
}

// Reset empties the string and clears the overflow mark.
func (s *String) Reset() {
	s.n = 0
	s.overflow = false
}

// Overflowed reports whether an append was dropped since the last Reset.
func (s *String) Overflowed() bool {
	return s.overflow
}

// Len returns the number of stored bytes.
func (s *String) Len() int {
	return s.n
}

// Cap returns the limit.
func (s *String) Cap() int {
	return s.limit
}

// Bytes returns the stored bytes. The slice aliases the String.
func (s *String) Bytes() []byte {
	return s.buf[:s.n]
}

// String returns a copy of the stored bytes.
func (s *String) String() string {
	return string(s.buf[:s.n])
}
