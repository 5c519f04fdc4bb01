package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"microblog/internal/schemas"
)

func TestValidatePostBody(t *testing.T) {
	testCases := []struct {
		name string
		body string
		err  error
	}{
		{"ExactlyMaximumLength", strings.Repeat("a", schemas.MaxPostLength), nil},
		{"OneCharacterOver", strings.Repeat("a", schemas.MaxPostLength+1), ErrPostTooLong},
		{"MultibyteAtMaximum", strings.Repeat("ü", schemas.MaxPostLength), nil},
		{"MultibyteOver", strings.Repeat("ü", schemas.MaxPostLength+1), ErrPostTooLong},
		{"Empty", "", ErrPostEmpty},
		{"WhitespaceOnly", " \t\n ", ErrPostEmpty},
		{"InvalidUTF8", "hello \xff world", ErrPostEncoding},
		{"Regular", "Hello, world!", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidatePostBody(tc.body), tc.err)
			if tc.err == nil {
				assert.NoError(t, ValidatePostBody(tc.body))
			}
		})
	}
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "", DetectLanguage(""))
	assert.Equal(t, "", DetectLanguage("   "))

	english := "The quick brown fox jumps over the lazy dog while the children are watching from the garden."
	assert.Equal(t, "en", DetectLanguage(english))

	german := "Der schnelle braune Fuchs springt über den faulen Hund, während die Kinder im Garten spielen."
	assert.Equal(t, "de", DetectLanguage(german))

	code := DetectLanguage("ok")
	assert.LessOrEqual(t, len(code), 5)
}
