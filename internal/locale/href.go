package locale

import (
	"regexp"
	"strings"
)

var externalHref = regexp.MustCompile(`^(?:[a-zA-Z][a-zA-Z0-9+.\-]*:|//)`)

// IsExternal reports whether href points outside the site (scheme or protocol-relative).
func IsExternal(href string) bool {
	return externalHref.MatchString(href)
}

// Normalize returns a locale-agnostic, slash-normalized absolute path for an internal href.
// Hash links and external URIs are returned unchanged; an empty href becomes "#".
func (s *Set) Normalize(href string) string {
	if href == "" || href == "#" {
		return "#"
	}
	if strings.HasPrefix(href, "#") || IsExternal(href) {
		return href
	}

	_, rest := s.split(href)
	return "/" + strings.Join(rest, "/")
}

// Split separates the leading locale segment from a path.
// The returned path is normalized; code is empty when the path carries no locale.
func (s *Set) Split(path string) (code string, rest string) {
	if path == "" || strings.HasPrefix(path, "#") || IsExternal(path) {
		return "", s.Normalize(path)
	}
	code, segments := s.split(path)
	return code, "/" + strings.Join(segments, "/")
}

// Localize re-qualifies an internal href with the locale prefix.
// The locale falls back to the default when code is not supported.
func (s *Set) Localize(code, href string) string {
	normalized := s.Normalize(href)
	if normalized == "#" || strings.HasPrefix(normalized, "#") || IsExternal(normalized) {
		return normalized
	}

	prefix := "/" + s.Resolve(code)
	if normalized == "/" {
		return prefix
	}
	return prefix + normalized
}

func (s *Set) split(path string) (string, []string) {
	segments := strings.Split(strings.TrimPrefix(collapseSlashes("/"+path), "/"), "/")

	first := ""
	for len(segments) > 0 {
		canonical, ok := s.byLower[strings.ToLower(segments[0])]
		if !ok {
			break
		}
		if first == "" {
			first = canonical
		}
		segments = segments[1:]
	}
	return first, segments
}

func collapseSlashes(path string) string {
	var b strings.Builder
	b.Grow(len(path))
	previousSlash := false
	for i := 0; i < len(path); i++ {
		ch := path[i]
		if ch == '/' {
			if previousSlash {
				continue
			}
			previousSlash = true
		} else {
			previousSlash = false
		}
		b.WriteByte(ch)
	}
	return b.String()
}
