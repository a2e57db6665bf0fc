package utils

import (
	"strings"

	"golang.org/x/text/language"
)

// DetermineLocale picks the response locale: an explicit query value wins,
// then the Accept-Language entries in q order, then def. Regional tags fall
// back to their base language ("es-MX" matches "es").
func DetermineLocale(queryLang, acceptLang string, supported []string, def string) string {
	sup := map[string]struct{}{}
	for _, s := range supported {
		sup[strings.ToLower(s)] = struct{}{}
	}
	pick := func(tag language.Tag) (string, bool) {
		if s := strings.ToLower(tag.String()); s != "und" {
			if _, ok := sup[s]; ok {
				return s, true
			}
		}
		base, conf := tag.Base()
		if conf == language.No {
			return "", false
		}
		if _, ok := sup[base.String()]; ok {
			return base.String(), true
		}
		return "", false
	}

	if queryLang != "" {
		if tag, err := language.Parse(queryLang); err == nil {
			if v, ok := pick(tag); ok {
				return v
			}
		}
	}
	// ParseAcceptLanguage returns tags ordered by descending q and drops q=0.
	if tags, _, err := language.ParseAcceptLanguage(acceptLang); err == nil {
		for _, tag := range tags {
			if v, ok := pick(tag); ok {
				return v
			}
		}
	}
	if _, ok := sup[strings.ToLower(def)]; ok {
		return strings.ToLower(def)
	}
	if len(supported) > 0 {
		return strings.ToLower(supported[0])
	}
	return "en"
}
