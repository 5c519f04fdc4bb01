package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSafeRedirect(t *testing.T) {
	for target, want := range map[string]bool{
		"/index":               true,
		"/user/susan?page=2":   true,
		"":                     false,
		"index":                false,
		"//evil.example.com":   false,
		"/\\evil.example.com":  false,
		"https://evil.example": false,
	} {
		assert.Equal(t, want, IsSafeRedirect(target), target)
	}
}
