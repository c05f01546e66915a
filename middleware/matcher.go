package middleware

import (
	"path"
	"strings"
)

// DefaultExcludedExtensions are image extensions served without running the edge filter
var DefaultExcludedExtensions = []string{"svg", "png", "jpg", "jpeg", "gif", "webp"}

// PathMatcher decides which request paths skip the edge filter
type PathMatcher struct {
	prefixes   []string
	extensions map[string]struct{}
}

// NewPathMatcher creates a PathMatcher excluding paths that start with any of
// prefixes or end in any of extensions (without the leading dot, case-insensitive)
func NewPathMatcher(prefixes, extensions []string) *PathMatcher {
	m := &PathMatcher{
		prefixes:   make([]string, 0, len(prefixes)),
		extensions: make(map[string]struct{}, len(extensions)),
	}
	for _, p := range prefixes {
		if p = strings.TrimSpace(p); p != "" {
			m.prefixes = append(m.prefixes, p)
		}
	}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			m.extensions[ext] = struct{}{}
		}
	}
	return m
}

// Excluded reports whether p bypasses the edge filter
func (m *PathMatcher) Excluded(p string) bool {
	if m == nil {
		return false
	}
	for _, prefix := range m.prefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	ext := path.Ext(p)
	if ext == "" {
		return false
	}
	_, ok := m.extensions[strings.ToLower(ext[1:])]
	return ok
}
