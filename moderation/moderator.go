// Package moderation censors forbidden words in message text.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

const censoredChar = '*'

// Moderator replaces occurrences of configured words with stars.
// Matching is case-insensitive via an Aho-Corasick automaton, so one
// pass covers the whole word list. A nil Moderator censors nothing.
type Moderator struct {
	matcher *goahocorasick.Machine
}

// New builds the automaton from words. An empty list yields a nil
// Moderator, which disables moderation.
func New(words []string) (*Moderator, error) {
	if len(words) == 0 {
		return nil, nil
	}
	patterns := make([][]rune, len(words))
	for i, word := range words {
		patterns[i] = lowerRunes([]rune(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m}, nil
}

// Censor returns text with every forbidden word replaced by stars.
func (m *Moderator) Censor(text string) string {
	if m == nil {
		return text
	}
	runes := []rune(text)
	spans := m.matcher.MultiPatternSearch(lowerRunes(runes), false)
	if len(spans) == 0 {
		return text
	}
	for _, span := range spans {
		for i := span.Pos; i < span.Pos+len(span.Word) && i < len(runes); i++ {
			runes[i] = censoredChar
		}
	}
	return string(runes)
}

// lowerRunes lowercases rune by rune so indices into the lowered slice
// line up with the original text.
func lowerRunes(input []rune) []rune {
	out := make([]rune, len(input))
	for i, r := range input {
		out[i] = unicode.ToLower(r)
	}
	return out
}
