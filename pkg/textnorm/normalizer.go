// Package textnorm turns raw review text into the canonical token string
// consumed by the vectorizer. Training, the CLIs, the HTTP API and the web
// UI all go through the same Normalizer, so the output must never depend on
// the caller.
package textnorm

import (
	"strings"
	"unicode"
)

// Normalizer cleans text against a frozen stopword set. It is safe for
// concurrent use.
type Normalizer struct {
	stopwords *StopwordSet
}

// New creates a normalizer. A nil set means the built-in Portuguese list.
func New(stopwords *StopwordSet) *Normalizer {
	if stopwords == nil {
		stopwords = PortugueseStopwords()
	}
	return &Normalizer{stopwords: stopwords}
}

// Default returns a normalizer over the built-in Portuguese stopwords.
func Default() *Normalizer {
	return New(nil)
}

// Load returns a normalizer over the stopword file at path, or over the
// built-in list when path is empty.
func Load(path string) (*Normalizer, error) {
	if path == "" {
		return Default(), nil
	}
	set, err := LoadStopwords(path)
	if err != nil {
		return nil, err
	}
	return New(set), nil
}

// Stopwords returns the frozen stopword set.
func (n *Normalizer) Stopwords() *StopwordSet {
	return n.stopwords
}

// Fingerprint identifies the stopword set this normalizer filters with.
func (n *Normalizer) Fingerprint() string {
	return n.stopwords.Fingerprint()
}

// Normalize lowercases s, drops every rune that is not an ASCII letter or
// whitespace, splits into word runs, removes stopwords and joins the rest
// with single spaces. Accented letters are dropped, not transliterated:
// "rápido" becomes "rpido".
func (n *Normalizer) Normalize(s string) string {
	return strings.Join(n.Tokens(s), " ")
}

// Tokens is Normalize without the final join.
func (n *Normalizer) Tokens(s string) []string {
	words := strings.FieldsFunc(strip(s), func(r rune) bool {
		return !isASCIILetter(r)
	})

	tokens := words[:0]
	for _, w := range words {
		if n.stopwords.Contains(w) {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// NormalizeAll normalizes every element, preserving order.
func (n *Normalizer) NormalizeAll(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = n.Normalize(t)
	}
	return out
}

// Clean is the column-level cleaning used before tokenization during corpus
// preparation: lowercase, strip non-letters and collapse whitespace runs to
// one space. Stopwords are kept.
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range strip(s) {
		if isSpace(r) {
			if !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// strip lowercases s and keeps only ASCII letters and whitespace.
func strip(s string) string {
	return strings.Map(func(r rune) rune {
		if isASCIILetter(r) || isSpace(r) {
			return r
		}
		return -1
	}, strings.ToLower(s))
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// isSpace matches the whitespace class of the regular expressions the
// models were trained with, which includes the ASCII file/group/record/unit
// separators.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
