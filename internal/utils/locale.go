package utils

import (
	"golang.org/x/text/language"
)

// LocaleMatcher picks the best supported language for a request.
type LocaleMatcher struct {
	matcher   language.Matcher
	supported []language.Tag
}

// NewLocaleMatcher builds a matcher over the configured language codes. The first code is the fallback.
func NewLocaleMatcher(languages []string) *LocaleMatcher {
	var tags []language.Tag
	for _, code := range languages {
		tag, err := language.Parse(code)
		if err != nil {
			LogMessage("warn", "Ignoring unsupported language "+code)
			continue
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		tags = []language.Tag{language.English}
	}

	return &LocaleMatcher{
		matcher:   language.NewMatcher(tags),
		supported: tags,
	}
}

// Match returns the base language code, e.g. "de", that best fits an Accept-Language header.
func (lm *LocaleMatcher) Match(acceptLanguage string) string {
	desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(desired) == 0 {
		return baseCode(lm.supported[0])
	}

	_, index, confidence := lm.matcher.Match(desired...)
	if confidence == language.No {
		return baseCode(lm.supported[0])
	}
	return baseCode(lm.supported[index])
}

func baseCode(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}
