package settings

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, uint8(11), s.DelayTime)
	assert.Equal(t, uint8(10), s.BeepVolume)
	assert.Equal(t, uint8(1), s.Sensitivity)
	assert.Equal(t, uint8(50), s.SampleWindow)
}

func TestFields_Order(t *testing.T) {
	names := make([]string, 0, len(Fields))
	for _, f := range Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"g_delay_time", "g_beep_vol", "g_sensitivity", "g_sample_window"}, names)

	_, ok := Lookup("G_BEEP_VOL")
	assert.False(t, ok, "names are case sensitive")
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    uint8
		wantErr error
	}{
		{name: "zero", text: "0", want: 0},
		{name: "max", text: "255", want: 255},
		{name: "blanks", text: " 42\r\n", want: 42},
		{name: "leading zeros", text: "007", want: 7},
		{name: "above range", text: "300", wantErr: ErrValueRange},
		{name: "far above range", text: "99999999", wantErr: ErrValueRange},
		{name: "negative", text: "-1", wantErr: ErrValueParse},
		{name: "letters", text: "abc", wantErr: ErrValueParse},
		{name: "trailing junk", text: "12x", wantErr: ErrValueParse},
		{name: "empty", text: "", wantErr: ErrValueParse},
		{name: "blank", text: "   ", wantErr: ErrValueParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValue(tt.text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply(t *testing.T) {
	s := Default()

	require.NoError(t, Apply(&s, "g_sample_window", "80"))
	assert.Equal(t, uint8(80), s.SampleWindow)

	require.NoError(t, Apply(&s, "g_beep_vol", "0"))
	assert.Equal(t, uint8(0), s.BeepVolume)

	err := Apply(&s, "g_sensitivity", "300")
	assert.ErrorIs(t, err, ErrValueRange)
	assert.Equal(t, uint8(1), s.Sensitivity, "range errors leave the field unchanged")

	err = Apply(&s, "g_sensitivity", "loud")
	assert.ErrorIs(t, err, ErrValueParse)
	assert.False(t, errors.Is(err, ErrValueRange))
	assert.Equal(t, uint8(1), s.Sensitivity)

	err = Apply(&s, "exINT", "5")
	assert.ErrorIs(t, err, ErrUnknownSetting)
	assert.Equal(t, Settings{DelayTime: 11, BeepVolume: 0, Sensitivity: 1, SampleWindow: 80}, s)
}

func TestDecode_UnknownName(t *testing.T) {
	s := Default()
	report, err := Decode(context.Background(), strings.NewReader("[unknown=5][g_delay_time=7]"), &s)
	require.NoError(t, err)

	assert.Equal(t, uint8(7), s.DelayTime)
	assert.Equal(t, 1, report.Applied)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, 1, report.Count(ErrUnknownSetting))
	assert.Equal(t, "unknown", report.Warnings[0].Record.Name)

	want := Default()
	want.DelayTime = 7
	assert.Equal(t, want, s)
}

func TestDecode_UnterminatedFinalRecord(t *testing.T) {
	s := Default()
	s.BeepVolume = 6
	report, err := Decode(context.Background(), strings.NewReader("[g_beep_vol=3"), &s)
	require.NoError(t, err)

	assert.Equal(t, uint8(6), s.BeepVolume)
	assert.Equal(t, 0, report.Applied)
	assert.Equal(t, 1, report.Count(ErrMalformedRecord))
	assert.Equal(t, 1, report.Count(ErrTruncatedRecord))
}

func TestDecode_EndlessStream(t *testing.T) {
	// An endless stream with an open record must stop at the budget.
	r := io.MultiReader(strings.NewReader("[g_delay_time=3][g_beep_vol="), endless{})
	s := Default()

	done := make(chan struct{})
	var report Report
	var err error
	go func() {
		defer close(done)
		report, err = Decode(context.Background(), r, &s, WithByteBudget(4096))
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Decode did not stop on an endless stream")
	}
	require.NoError(t, err)
	assert.Equal(t, uint8(3), s.DelayTime)
	assert.Equal(t, 1, report.Count(ErrByteBudget))
}

func TestDecode_Mixed(t *testing.T) {
	input := "[g_delay_time=2]\n[g_beep_vol=loud]\n[g_sensitivity=300]\n[g_sample_window]\n[g_sample_window=90]\n"
	s := Default()
	report, err := Decode(context.Background(), strings.NewReader(input), &s)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Applied)
	assert.Equal(t, 1, report.Count(ErrValueParse))
	assert.Equal(t, 1, report.Count(ErrValueRange))
	assert.Equal(t, 1, report.Count(ErrMalformedRecord))
	assert.Equal(t, Settings{DelayTime: 2, BeepVolume: 10, Sensitivity: 1, SampleWindow: 90}, s)
}

func TestDecode_ReadError(t *testing.T) {
	boom := errors.New("card removed")
	r := io.MultiReader(strings.NewReader("[g_delay_time=2]"), iotest.ErrReader(boom))
	s := Default()

	report, err := Decode(context.Background(), r, &s)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, report.Applied)
	assert.Equal(t, uint8(2), s.DelayTime)
}

func TestDecode_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := Default()

	_, err := Decode(ctx, strings.NewReader("[g_delay_time=2]"), &s)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Default(), s)
}

func TestDecode_CancelledUnbounded(t *testing.T) {
	// Blanks never complete a record, so only the context can stop an unbounded decode.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	s := Default()

	done := make(chan struct{})
	var err error
	go func() {
		defer close(done)
		_, err = Decode(ctx, blanks{}, &s, WithByteBudget(0))
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Decode ignored the deadline")
	}
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Default(), s)
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Default()))
	assert.Equal(t, "[g_delay_time=11]\n[g_beep_vol=10]\n[g_sensitivity=1]\n[g_sample_window=50]\n", buf.String())
}

func TestEncode_WriteError(t *testing.T) {
	err := Encode(failingWriter{}, Default())
	assert.Error(t, err)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	values := []uint8{0, 1, 9, 10, 99, 100, 254, 255}
	for _, v := range values {
		want := Settings{DelayTime: v, BeepVolume: 255 - v, Sensitivity: v / 2, SampleWindow: v | 1}

		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, want))

		got := Default()
		report, err := Decode(context.Background(), &buf, &got)
		require.NoError(t, err)
		assert.Empty(t, report.Warnings)
		assert.Equal(t, len(Fields), report.Applied)
		assert.Equal(t, want, got)
	}
}

type endless struct{}

func (endless) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = '9'
	}
	return len(p), nil
}

type blanks struct{}

func (blanks) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = ' '
	}
	return len(p), nil
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("write protected")
}
