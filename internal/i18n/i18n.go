// Package i18n resolves message codes to localized text.
//
// Catalogs live in locales/<tag>.json and are embedded at build time. English
// is the default language: a code missing from the requested catalog, or an
// unsupported request locale, resolves to the English text.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var catalogs embed.FS

// Supported lists the catalogs shipped with the service; the first entry is
// the fallback.
var Supported = []language.Tag{language.English, language.Turkish}

// Localizer is safe for concurrent use; it holds no per-request state.
type Localizer struct {
	bundle    *goi18n.Bundle
	matcher   language.Matcher
	supported []language.Tag
}

// New loads the embedded catalogs.
func New() (*Localizer, error) {
	bundle := goi18n.NewBundle(Supported[0])
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	for _, tag := range Supported {
		path := fmt.Sprintf("locales/%s.json", tag.String())
		if _, err := bundle.LoadMessageFileFS(catalogs, path); err != nil {
			return nil, fmt.Errorf("load catalog %s: %w", path, err)
		}
	}
	return &Localizer{
		bundle:    bundle,
		matcher:   language.NewMatcher(Supported),
		supported: Supported,
	}, nil
}

// MustNew is New for process start-up and tests; the catalogs are embedded so
// a failure is a build defect.
func MustNew() *Localizer {
	l, err := New()
	if err != nil {
		panic(err)
	}
	return l
}

// Negotiate picks the best supported locale for an Accept-Language header.
// Empty or unparseable headers select the fallback.
func (l *Localizer) Negotiate(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return l.supported[0]
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return l.supported[0]
	}
	_, idx, confidence := l.matcher.Match(tags...)
	if confidence == language.No {
		return l.supported[0]
	}
	return l.supported[idx]
}

// Resolve returns the message for code in locale. Unknown codes are returned
// unchanged so a missing catalog entry is visible rather than blank.
func (l *Localizer) Resolve(code string, locale language.Tag) string {
	return l.ResolveWith(code, locale, nil)
}

// ResolveWith is Resolve for templated messages.
func (l *Localizer) ResolveWith(code string, locale language.Tag, data any) string {
	loc := goi18n.NewLocalizer(l.bundle, locale.String(), l.supported[0].String())
	msg, err := loc.Localize(&goi18n.LocalizeConfig{
		MessageID:    code,
		TemplateData: data,
	})
	if err != nil || msg == "" {
		return code
	}
	return msg
}
