package locale

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

var (
	// ErrEmptyLocaleSet indicates no locale codes were configured.
	ErrEmptyLocaleSet = errors.New("locale set must contain at least one code")
	// ErrUnknownDefault indicates the default locale is not part of the set.
	ErrUnknownDefault = errors.New("default locale is not a supported locale")
)

// Set is an ordered collection of supported locale codes with a designated default.
type Set struct {
	codes      []string
	tags       []language.Tag
	byLower    map[string]string
	defaultTag string
	matcher    language.Matcher
}

// NewSet validates the supplied codes and builds a locale set.
// Codes keep their configured spelling and must be unique ignoring case.
func NewSet(codes []string, defaultCode string) (*Set, error) {
	set := &Set{byLower: make(map[string]string, len(codes))}

	for _, raw := range codes {
		code := strings.TrimSpace(raw)
		if code == "" {
			continue
		}
		lower := strings.ToLower(code)
		if _, exists := set.byLower[lower]; exists {
			return nil, fmt.Errorf("duplicate locale code %q", code)
		}
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("invalid locale code %q: %w", code, err)
		}
		set.byLower[lower] = code
		set.codes = append(set.codes, code)
		set.tags = append(set.tags, tag)
	}

	if len(set.codes) == 0 {
		return nil, ErrEmptyLocaleSet
	}

	canonical, ok := set.byLower[strings.ToLower(strings.TrimSpace(defaultCode))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDefault, defaultCode)
	}
	set.defaultTag = canonical
	set.matcher = language.NewMatcher(set.tags)

	return set, nil
}

// MustNewSet is like NewSet but panics on invalid input.
func MustNewSet(codes []string, defaultCode string) *Set {
	set, err := NewSet(codes, defaultCode)
	if err != nil {
		panic(err)
	}
	return set
}

// Codes returns the supported codes in configured order.
func (s *Set) Codes() []string {
	out := make([]string, len(s.codes))
	copy(out, s.codes)
	return out
}

// Default returns the default locale code.
func (s *Set) Default() string {
	return s.defaultTag
}

// Lookup returns the configured spelling of code when it is supported.
func (s *Set) Lookup(code string) (string, bool) {
	canonical, ok := s.byLower[strings.ToLower(strings.TrimSpace(code))]
	return canonical, ok
}

// Contains reports whether code is a supported locale, ignoring case.
func (s *Set) Contains(code string) bool {
	_, ok := s.Lookup(code)
	return ok
}

// Resolve returns the supported spelling of code or the default locale.
func (s *Set) Resolve(code string) string {
	if canonical, ok := s.Lookup(code); ok {
		return canonical
	}
	return s.defaultTag
}

// Match picks the supported locale that best serves an Accept-Language header.
func (s *Set) Match(acceptLanguage string) string {
	acceptLanguage = strings.TrimSpace(acceptLanguage)
	if acceptLanguage == "" {
		return s.defaultTag
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return s.defaultTag
	}

	_, index, confidence := s.matcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(s.codes) {
		return s.defaultTag
	}
	return s.codes[index]
}
