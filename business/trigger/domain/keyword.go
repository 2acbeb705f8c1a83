// Package domain contains the activation gesture recognizers.
package domain

import (
	"strings"
	"time"
	"unicode"
)

// KeywordMatcher recognizes an activation word typed anywhere.
// The buffer resets once more than IdleTimeout passes between letters.
type KeywordMatcher struct {
	word    string
	idle    time.Duration
	buf     []rune
	lastKey time.Time
}

// NewKeywordMatcher creates a matcher for word, which is lowercased.
func NewKeywordMatcher(word string, idle time.Duration) *KeywordMatcher {
	w := strings.ToLower(word)
	return &KeywordMatcher{
		word: w,
		idle: idle,
		buf:  make([]rune, 0, len(w)),
	}
}

// Feed records one keystroke at now and reports whether the word was just completed.
// Non-letters are ignored.
func (m *KeywordMatcher) Feed(r rune, now time.Time) bool {
	if !unicode.IsLetter(r) || m.word == "" {
		return false
	}

	if !m.lastKey.IsZero() && now.Sub(m.lastKey) > m.idle {
		m.buf = m.buf[:0]
	}
	m.lastKey = now

	m.buf = append(m.buf, unicode.ToLower(r))
	if n := len([]rune(m.word)); len(m.buf) > n {
		m.buf = append(m.buf[:0], m.buf[len(m.buf)-n:]...)
	}

	if string(m.buf) == m.word {
		m.Reset()
		return true
	}
	return false
}

// Reset clears the buffer.
func (m *KeywordMatcher) Reset() {
	m.buf = m.buf[:0]
	m.lastKey = time.Time{}
}

// Buffer returns the pending letters.
func (m *KeywordMatcher) Buffer() string {
	return string(m.buf)
}
