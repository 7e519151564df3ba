package api

import (
	"strings"

	"golang.org/x/text/language"
)

// Lang selects which of the parallel bilingual fields is displayed.
type Lang string

const (
	LangEN Lang = "en"
	LangAR Lang = "ar"
)

// Langs lists the supported languages; the first one is the matcher fallback.
var Langs = []Lang{LangEN, LangAR}

var langMatcher = language.NewMatcher([]language.Tag{language.English, language.Arabic})

// ParseLang accepts "en"/"ar" and any BCP 47 tag whose base is one of them.
func ParseLang(s string) (Lang, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return "", false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	switch base.String() {
	case "en":
		return LangEN, true
	case "ar":
		return LangAR, true
	}
	return "", false
}

// MatchLang picks the best supported language for an Accept-Language header.
// It returns fallback when the header is empty or names nothing we serve.
func MatchLang(acceptLanguage string, fallback Lang) Lang {
	if strings.TrimSpace(acceptLanguage) == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := langMatcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return Langs[idx]
}

// Dir is the text direction used by templates.
func (l Lang) Dir() string {
	if l == LangAR {
		return "rtl"
	}
	return "ltr"
}

// Other returns the opposite language, used by the language toggle.
func (l Lang) Other() Lang {
	if l == LangAR {
		return LangEN
	}
	return LangAR
}

func (l Lang) String() string { return string(l) }
