package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocaleMatcher(t *testing.T) {
	matcher := NewLocaleMatcher([]string{"en", "de"})

	assert.Equal(t, "de", matcher.Match("de-DE,de;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", matcher.Match("en-US"))
	assert.Equal(t, "en", matcher.Match(""))
	assert.Equal(t, "en", matcher.Match("ja-JP"))
}

func TestLocaleMatcherIgnoresInvalidCodes(t *testing.T) {
	matcher := NewLocaleMatcher([]string{"??", "de"})
	assert.Equal(t, "de", matcher.Match("fr"))
}
