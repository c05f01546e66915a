package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathMatcher_Excluded(t *testing.T) {
	m := NewPathMatcher(
		[]string{"/_next/static", "/_next/image", "/static/", "/favicon.ico", " "},
		DefaultExcludedExtensions,
	)

	tests := []struct {
		path     string
		excluded bool
	}{
		{"/_next/static/chunk.js", true},
		{"/_next/image", true},
		{"/favicon.ico", true},
		{"/static/app.css", true},
		{"/logo.svg", true},
		{"/uploads/photo.JPG", true},
		{"/a/b/c.webp", true},
		{"/dashboard", false},
		{"/designer-flow/x", false},
		{"/", false},
		{"/report.pdf", false},
		{"/staticky", false},
		{"/svg", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.excluded, m.Excluded(tt.path))
		})
	}
}

func TestPathMatcher_Nil(t *testing.T) {
	var m *PathMatcher
	assert.False(t, m.Excluded("/_next/static/chunk.js"))
}

func TestNewPathMatcher_NormalisesExtensions(t *testing.T) {
	m := NewPathMatcher(nil, []string{".PNG", " gif "})
	assert.True(t, m.Excluded("/a.png"))
	assert.True(t, m.Excluded("/a.gif"))
	assert.False(t, m.Excluded("/a.jpg"))
}
