package fixed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString_Append(t *testing.T) {
	s := New(3)
	assert.Equal(t, 3, s.Cap())

	assert.True(t, s.AppendByte('a'))
	assert.True(t, s.AppendByte('b'))
	assert.True(t, s.AppendByte('c'))
	assert.False(t, s.Overflowed())

	assert.False(t, s.AppendByte('d'))
	assert.True(t, s.Overflowed())
	assert.Equal(t, "abc", s.String())
	assert.Equal(t, 3, s.Len())

	s.Reset()
	assert.False(t, s.Overflowed())
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Bytes())
}

func TestNew_ClampsLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "negative", limit: -1, want: 0},
		{name: "zero", limit: 0, want: 0},
		{name: "within", limit: 16, want: 16},
		{name: "above max", limit: 100, want: MaxCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.limit)
			assert.Equal(t, tt.want, s.Cap())
		})
	}
}

func TestString_ZeroLimitAlwaysOverflows(t *testing.T) {
	s := New(0)
	assert.False(t, s.AppendByte('x'))
	assert.True(t, s.Overflowed())
	assert.Equal(t, "", s.String())
}
