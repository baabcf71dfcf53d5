package settings

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/itohio/goshot/pkg/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveLoad(t *testing.T) {
	mem := storage.NewMem(1 << 20)
	store := NewStore(mem, "", zerolog.Nop())
	assert.Equal(t, DefaultPath, store.Path())

	want := Settings{DelayTime: 3, BeepVolume: 7, Sensitivity: 15, SampleWindow: 120}
	require.NoError(t, store.Save(context.Background(), want))

	data, ok := mem.ReadFile(DefaultPath)
	require.True(t, ok)
	assert.Equal(t, "[g_delay_time=3]\n[g_beep_vol=7]\n[g_sensitivity=15]\n[g_sample_window=120]\n", string(data))

	got := Default()
	report, err := store.Load(context.Background(), &got)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Applied)
	assert.Equal(t, want, got)
}

func TestStore_LoadUnavailableKeepsDefaults(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *storage.Mem)
	}{
		{name: "no card", setup: func(m *storage.Mem) { m.SetPresent(false) }},
		{name: "no file", setup: func(m *storage.Mem) {}},
		{name: "broken file system", setup: func(m *storage.Mem) { m.FailOpen = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := storage.NewMem(1 << 20)
			tt.setup(mem)
			store := NewStore(mem, DefaultPath, zerolog.Nop())

			s := Default()
			_, err := store.Load(context.Background(), &s)
			assert.ErrorIs(t, err, storage.ErrUnavailable)
			assert.Equal(t, Default(), s)
		})
	}
}

func TestStore_SaveUnavailable(t *testing.T) {
	mem := storage.NewMem(1 << 20)
	mem.SetPresent(false)
	store := NewStore(mem, DefaultPath, zerolog.Nop())

	err := store.Save(context.Background(), Default())
	assert.ErrorIs(t, err, storage.ErrUnavailable)
}

func TestStore_SaveWriteFailsWithoutAbort(t *testing.T) {
	medium := &plainMedium{Mem: storage.NewMem(1 << 20)}
	store := NewStore(medium, DefaultPath, zerolog.Nop())

	err := store.Save(context.Background(), Default())
	assert.ErrorIs(t, err, storage.ErrUnavailable)
	assert.Contains(t, err.Error(), "write protected")
	assert.True(t, medium.w.closed, "the handle is released")
}

func TestStore_SaveCancelled(t *testing.T) {
	mem := storage.NewMem(1 << 20)
	mem.WriteFile(DefaultPath, []byte("[g_beep_vol=1]\n"))
	store := NewStore(mem, DefaultPath, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Save(ctx, Default()), context.Canceled)

	data, ok := mem.ReadFile(DefaultPath)
	require.True(t, ok, "a cancelled save must not touch the old file")
	assert.Equal(t, "[g_beep_vol=1]\n", string(data))
}

func TestStore_DirRoundTrip(t *testing.T) {
	dir := storage.NewDir(t.TempDir(), zerolog.Nop())
	store := NewStore(dir, DefaultPath, zerolog.Nop())

	want := Settings{DelayTime: 0, BeepVolume: 255, Sensitivity: 20, SampleWindow: 1}
	require.NoError(t, store.Save(context.Background(), want))

	got := Default()
	_, err := store.Load(context.Background(), &got)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// plainMedium hands out writers that cannot abort and fail every write.
type plainMedium struct {
	*storage.Mem
	w *brokenWriter
}

func (m *plainMedium) Create(string) (io.WriteCloser, error) {
	m.w = &brokenWriter{}
	return m.w, nil
}

type brokenWriter struct {
	closed bool
}

func (w *brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("write protected")
}

func (w *brokenWriter) Close() error {
	w.closed = true
	return errors.New("close after failed write")
}
