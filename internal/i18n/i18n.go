// Package i18n picks the UI locale for a request.
package i18n

import (
	"golang.org/x/text/language"
)

type Lang string

const (
	Indonesian Lang = "id"
	English    Lang = "en"
)

var (
	supported = []language.Tag{language.Indonesian, language.English}
	matcher   = language.NewMatcher(supported)
)

// Parse maps a configured language code to a Lang, defaulting to Indonesian.
func Parse(s string) Lang {
	if s == string(English) {
		return English
	}
	return Indonesian
}

// Match resolves an Accept-Language header against the supported locales.
// An empty or unmatched header yields fallback.
func Match(acceptLanguage string, fallback Lang) Lang {
	if acceptLanguage == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	if supported[idx] == language.English {
		return English
	}
	return Indonesian
}
