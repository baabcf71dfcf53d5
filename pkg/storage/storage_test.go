package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMem_CreateOpen(t *testing.T) {
	m := NewMem(1 << 20)

	w, err := m.Create("ShotTimer/settings.st")
	require.NoError(t, err)
	_, err = io.WriteString(w, "[g_beep_vol=3]\n")
	require.NoError(t, err)

	// Content only appears once the writer is closed.
	_, ok := m.ReadFile("ShotTimer/settings.st")
	assert.False(t, ok)

	require.NoError(t, w.Close())

	r, err := m.Open("ShotTimer/settings.st")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "[g_beep_vol=3]\n", string(data))
}

func TestMem_CreateRemovesOldFile(t *testing.T) {
	m := NewMem(1 << 20)
	m.WriteFile("settings.st", []byte("old"))

	w, err := m.Create("settings.st")
	require.NoError(t, err)
	_, ok := m.ReadFile("settings.st")
	assert.False(t, ok, "old content is gone before the new file is closed")
	require.NoError(t, w.Close())

	data, ok := m.ReadFile("settings.st")
	assert.True(t, ok)
	assert.Empty(t, data)
}

func TestMem_Unavailable(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *Mem)
	}{
		{name: "ejected", setup: func(m *Mem) { m.SetPresent(false) }},
		{name: "broken file system", setup: func(m *Mem) { m.FailOpen = true }},
		{name: "missing file", setup: func(m *Mem) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMem(1 << 20)
			tt.setup(m)
			_, err := m.Open("settings.st")
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestMem_Info(t *testing.T) {
	m := NewMem(1 << 20)
	m.WriteFile("b.st", []byte("12"))
	m.WriteFile("a.st", []byte("1"))

	info, err := m.Info()
	require.NoError(t, err)
	assert.True(t, info.Present)
	assert.Equal(t, CardSDHC, info.Card)
	assert.Equal(t, 32, info.FATType)
	assert.Equal(t, uint64(1<<20)*BlockSize, info.SizeBytes())
	require.Len(t, info.Files, 2)
	assert.Equal(t, "a.st", info.Files[0].Name)
	assert.Equal(t, int64(2), info.Files[1].Size)

	m.SetPresent(false)
	_, err = m.Info()
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCardType_String(t *testing.T) {
	assert.Equal(t, "SD1", CardSD1.String())
	assert.Equal(t, "SD2", CardSD2.String())
	assert.Equal(t, "SDHC", CardSDHC.String())
	assert.Equal(t, "Unknown", CardType(42).String())
}

func TestDir_CreateReplaces(t *testing.T) {
	d := NewDir(t.TempDir(), zerolog.Nop())

	for _, content := range []string{"first", "second"} {
		w, err := d.Create("ShotTimer/settings.st")
		require.NoError(t, err)
		_, err = io.WriteString(w, content)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}

	data, err := os.ReadFile(filepath.Join(d.Root(), "ShotTimer", "settings.st"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	r, err := d.Open("ShotTimer/settings.st")
	require.NoError(t, err)
	defer r.Close()
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestDir_OpenMissing(t *testing.T) {
	d := NewDir(t.TempDir(), zerolog.Nop())
	_, err := d.Open("nope.st")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDir_Remove(t *testing.T) {
	d := NewDir(t.TempDir(), zerolog.Nop())
	require.NoError(t, os.WriteFile(filepath.Join(d.Root(), "x.st"), []byte("x"), 0o644))

	require.NoError(t, d.Remove("x.st"))
	require.NoError(t, d.Remove("x.st"), "removing a missing file is not an error")
	_, err := os.Stat(filepath.Join(d.Root(), "x.st"))
	assert.True(t, os.IsNotExist(err))
}

func TestDir_Info(t *testing.T) {
	d := NewDir(t.TempDir(), zerolog.Nop())
	require.NoError(t, os.MkdirAll(filepath.Join(d.Root(), "ShotTimer"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(d.Root(), "ShotTimer", "settings.st"), []byte("abc"), 0o644))

	info, err := d.Info()
	require.NoError(t, err)
	assert.True(t, info.Present)
	require.Len(t, info.Files, 1)
	assert.Equal(t, "ShotTimer/settings.st", info.Files[0].Name)
	assert.Equal(t, int64(3), info.Files[0].Size)

	missing := NewDir(filepath.Join(d.Root(), "missing"), zerolog.Nop())
	_, err = missing.Info()
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDir_Watch(t *testing.T) {
	d := NewDir(t.TempDir(), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	changes, err := d.Watch(ctx, "settings.st")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(d.Root(), "settings.st"), []byte("[g_beep_vol=1]"), 0o644))

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	cancel()
	select {
	case _, ok := <-changes:
		for ok {
			_, ok = <-changes
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch channel not closed after cancel")
	}
}

func TestCheck(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	m := NewMem(1 << 20)
	m.WriteFile("ShotTimer/settings.st", []byte("[g_beep_vol=3]\n"))

	info, err := Check(m, logger)
	require.NoError(t, err)
	assert.Len(t, info.Files, 1)
	assert.Contains(t, buf.String(), `"card_type":"SDHC"`)
	assert.Contains(t, buf.String(), `"mbytes":512`)
	assert.Contains(t, buf.String(), "ShotTimer/settings.st")

	buf.Reset()
	m.SetPresent(false)
	_, err = Check(m, logger)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, buf.String(), "is a card inserted?")
}
