package middleware

import (
	"net/http"

	"golang.org/x/text/language"

	"signup/pkg/requestcontext"
)

// LocaleNegotiator picks a supported locale for an Accept-Language header.
type LocaleNegotiator interface {
	Negotiate(acceptLanguage string) language.Tag
}

// Locale negotiates the request locale once and stores it on the context.
// The chosen locale is echoed in Content-Language.
func Locale(negotiator LocaleNegotiator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tag := negotiator.Negotiate(r.Header.Get("Accept-Language"))
			w.Header().Set("Content-Language", tag.String())
			ctx := requestcontext.WithLocale(r.Context(), tag)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
