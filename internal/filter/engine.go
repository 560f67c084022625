// Package filter decides which chat messages are prayer requests and which
// authors are the bot itself.
package filter

import (
	"strings"
	"unicode"
)

// DefaultKeywords is the fixed keyword set of a prayer request.
var DefaultKeywords = []string{
	"pray for",
	"prayer request",
	"please pray",
	"prarthna",
	"prayer",
	"prathna",
	"dua",
	"praying",
	"need prayer",
}

// Classifier matches text against a keyword set.
type Classifier struct {
	keywords []string
}

// NewClassifier creates a Classifier for the given keywords.
// Keywords are lower-cased; empty ones are dropped.
func NewClassifier(keywords []string) *Classifier {
	kw := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(k)
		if k == "" {
			continue
		}
		kw = append(kw, k)
	}
	return &Classifier{keywords: kw}
}

// IsRequest reports whether text contains any keyword, ignoring case.
// Matching is plain substring search, so "dua" also matches "education".
func (c *Classifier) IsRequest(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, k := range c.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// IdentitySet holds the bot's own identities in canonical form.
type IdentitySet struct {
	names map[string]struct{}
}

// NewIdentitySet creates an IdentitySet from display names or handles.
func NewIdentitySet(aliases []string) *IdentitySet {
	names := make(map[string]struct{}, len(aliases))
	for _, a := range aliases {
		if c := CanonicalIdentity(a); c != "" {
			names[c] = struct{}{}
		}
	}
	return &IdentitySet{names: names}
}

// Contains reports whether name is one of the bot identities.
func (s *IdentitySet) Contains(name string) bool {
	if s == nil || len(s.names) == 0 {
		return false
	}
	_, ok := s.names[CanonicalIdentity(name)]
	return ok
}

// Len returns the number of distinct identities.
func (s *IdentitySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// CanonicalIdentity lower-cases name and keeps only its letters and digits.
// Whitespace, punctuation and emoji remnants such as variation selectors,
// skin-tone modifiers and joiners are dropped.
func CanonicalIdentity(name string) string {
	return strings.Map(func(r rune) rune {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}
