package testutil

import (
	"net/http"

	"signup/pkg/requestcontext"

	"golang.org/x/text/language"
)

// WithLocale sets the negotiated locale the way the locale middleware would.
func WithLocale(req *http.Request, tag language.Tag) *http.Request {
	return req.WithContext(requestcontext.WithLocale(req.Context(), tag))
}

// WithClientIP sets the client address the way the metadata middleware would.
func WithClientIP(req *http.Request, ip string) *http.Request {
	ctx := requestcontext.WithClientMetadata(req.Context(), ip, req.UserAgent())
	return req.WithContext(ctx)
}
