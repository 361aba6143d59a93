package storage

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSandboxResolvePath(t *testing.T) {
	s, err := NewSandbox(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "simple file", path: "video.mp4"},
		{name: "nested path", path: "media/2026/video.mp4"},
		{name: "dot components collapse", path: "media/./video.mp4"},
		{name: "escape via dotdot", path: "../outside.mp4", wantErr: true},
		{name: "nested escape", path: "media/../../outside.mp4", wantErr: true},
		{name: "absolute path", path: "/etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := s.ResolvePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(resolved))
		})
	}
}

func TestSandboxAtomicWriteReader(t *testing.T) {
	s, err := NewSandbox(t.TempDir())
	require.NoError(t, err)

	data := []byte("fake video payload")
	require.NoError(t, s.AtomicWriteReader("media/clip.mp4", bytes.NewReader(data)))

	got, err := s.ReadFile("media/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	size, err := s.Size("media/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), size)
}

func TestSandboxExistsAndRemove(t *testing.T) {
	s, err := NewSandbox(t.TempDir())
	require.NoError(t, err)

	exists, err := s.Exists("missing.mp4")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.AtomicWrite("clip.mp4", []byte("x")))

	exists, err = s.Exists("clip.mp4")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.Remove("clip.mp4"))

	exists, err = s.Exists("clip.mp4")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSandboxRemoveAllGuardsBase(t *testing.T) {
	s, err := NewSandbox(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, s.RemoveAll("."))
}
