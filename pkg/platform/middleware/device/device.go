// Package device identifies the client device behind a request from its
// User-Agent header.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Describe reduces a User-Agent header to "browser on os". Crawlers report
// as "bot" and an empty header as "unknown".
func Describe(header string) string {
	if strings.TrimSpace(header) == "" {
		return "unknown"
	}
	ua := useragent.New(header)
	if ua.Bot() {
		return "bot"
	}
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "unknown"
	}
	if os := ua.OS(); os != "" {
		return browser + " on " + os
	}
	return browser
}
