package mission

import (
	"strings"
	"unicode"
)

// DefaultSuffixes are the autopilot flavours appended to activity names.
var DefaultSuffixes = []string{"px4", "ardupilot"}

// Normalizer canonicalizes state and activity names for fuzzy matching.
// The zero value strips no suffixes.
type Normalizer struct {
	// Suffixes are checked in order after lowercasing; at most one is removed.
	// Entries are expected in lower case.
	Suffixes []string
}

// NewNormalizer returns a Normalizer for the given suffixes, lowercased.
// With no arguments it uses DefaultSuffixes.
func NewNormalizer(suffixes ...string) Normalizer {
	if len(suffixes) == 0 {
		suffixes = DefaultSuffixes
	}
	n := Normalizer{Suffixes: make([]string, 0, len(suffixes))}
	for _, s := range suffixes {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			n.Suffixes = append(n.Suffixes, s)
		}
	}
	return n
}

// Normalize lowercases raw, strips the first matching suffix, and drops every
// character that is not a letter or digit. It never fails.
func (n Normalizer) Normalize(raw string) string {
	s := strings.ToLower(raw)
	for _, suffix := range n.Suffixes {
		if suffix != "" && strings.HasSuffix(s, suffix) {
			s = strings.TrimSuffix(s, suffix)
			break
		}
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
	return strings.TrimSpace(s)
}
