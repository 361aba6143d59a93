package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"bare host", "cdn.example.com", "http://cdn.example.com"},
		{"trailing slash", "https://cdn.example.com/", "https://cdn.example.com"},
		{"host with port", "media.local:8080", "http://media.local:8080"},
		{"already normalized", "https://cdn.example.com", "https://cdn.example.com"},
		{"whitespace", "  http://cdn.example.com ", "http://cdn.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBaseURL(tt.input))
		})
	}
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "http://cdn.example.com/media/a.mp4", JoinPath("http://cdn.example.com", "media/a.mp4"))
	assert.Equal(t, "http://cdn.example.com/media/a.mp4", JoinPath("http://cdn.example.com/", "/media/a.mp4"))
	assert.Equal(t, "/media/a.mp4", JoinPath("", "/media/a.mp4"))
}

func TestIsRemoteURL(t *testing.T) {
	assert.True(t, IsRemoteURL("http://example.com/x"))
	assert.True(t, IsRemoteURL("https://example.com/x"))
	assert.True(t, IsRemoteURL("//example.com/x"))
	assert.False(t, IsRemoteURL("/var/media/x.mp4"))
	assert.False(t, IsRemoteURL(""))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"My Holiday Video", "my-holiday-video"},
		{"clip_01 (final).MP4", "clip-01-final-mp4"},
		{"---", ""},
		{"", ""},
		{"already-slugged", "already-slugged"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.input), "input %q", tt.input)
	}
}
