// Package legible renders millisecond counts as fixed-width ASCII for character displays.
//
// Both renderings start from a 12 character template, fill it from a slot table and keep the
// rightmost width characters. Nothing here allocates.
package legible

const (
	// Capacity is the number of printable characters in a full rendering.
	Capacity = 12

	numberTemplate = "000000000000"
	clockTemplate  = "00:00:00.000"

	msPerHour   = 3600000
	msPerMinute = 60000
	msPerSecond = 1000
)

// slot is a run of digit positions in the template. The value written into it is the
// quotient of the running remainder by div; the remainder keeps value % div.
type slot struct {
	start int
	width int
	div   uint32
}

// Index 0 is never written, so plain numbers carry 11 significant digits with a fixed
// leading '0'. A uint32 has at most 10 digits, so this is never visible for valid input.
var numberSlots = [...]slot{
	{start: 1, width: 11, div: 1},
}

var clockSlots = [...]slot{
	{start: 0, width: 2, div: msPerHour},   // hours
	{start: 3, width: 2, div: msPerMinute}, // minutes
	{start: 6, width: 2, div: msPerSecond}, // seconds
	{start: 9, width: 3, div: 1},           // milliseconds
}

// Text is a fixed-capacity character buffer holding one rendering.
type Text struct {
	buf [Capacity]byte
	n   int
}

// Bytes returns the rendered characters. The slice aliases the Text.
func (t *Text) Bytes() []byte {
	return t.buf[:t.n]
}

// String returns the rendered characters as a string.
func (t *Text) String() string {
	return string(t.buf[:t.n])
}

// Len returns the number of rendered characters.
func (t *Text) Len() int {
	return t.n
}

// Trim keeps the rightmost width characters. A width <= 0 empties the Text and a width
// at or above the current length leaves it untouched, so trimming twice to the same width
// is a no-op.
func (t *Text) Trim(width int) {
	if width >= t.n {
		return
	}
	if width <= 0 {
		t.n = 0
		return
	}
	copy(t.buf[:width], t.buf[t.n-width:t.n])
	t.n = width
}

// ConvertNumber renders value as a zero-padded decimal and keeps the rightmost width
// characters.
func ConvertNumber(dst *Text, value uint32, width int) {
	render(dst, numberTemplate, numberSlots[:], value, width)
}

// ConvertTime renders elapsedMs as HH:MM:SS.mmm and keeps the rightmost width characters.
// Width 6 yields "SS.mmm"; components wider than their slot lose their high-order digits.
func ConvertTime(dst *Text, elapsedMs uint32, width int) {
	render(dst, clockTemplate, clockSlots[:], elapsedMs, width)
}

func render(dst *Text, template string, slots []slot, value uint32, width int) {
	dst.n = copy(dst.buf[:], template)
	rem := value
	for _, s := range slots {
		q := rem / s.div
		rem %= s.div
		putDigits(dst.buf[s.start:s.start+s.width], q)
	}
	dst.Trim(width)
}

// putDigits writes v least significant digit first. Digits that do not fit are dropped.
func putDigits(dst []byte, v uint32) {
	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = '0' + byte(v%10)
		v /= 10
	}
}
