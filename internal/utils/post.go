package utils

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
	"microblog/internal/schemas"
)

var (
	ErrPostEmpty    = errors.New("post body is empty")
	ErrPostTooLong  = errors.New("post body exceeds the maximum length")
	ErrPostEncoding = errors.New("post body is not valid UTF-8")
)

// maxLanguageCodeLength mirrors the width of the posts.language column.
const maxLanguageCodeLength = 5

// ValidatePostBody enforces the post policy before anything is persisted. Length is counted in characters, not bytes.
func ValidatePostBody(body string) error {
	if !utf8.ValidString(body) {
		return ErrPostEncoding
	}
	if strings.TrimSpace(body) == "" {
		return ErrPostEmpty
	}
	if utf8.RuneCountInString(body) > schemas.MaxPostLength {
		return ErrPostTooLong
	}
	return nil
}

// DetectLanguage guesses the ISO 639-1 code of text. Unreliable or unknown results yield "" so a post is never
// rejected because of detection.
func DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}

	code := info.Lang.Iso6391()
	if code == "" || len(code) > maxLanguageCodeLength {
		return ""
	}
	return code
}
