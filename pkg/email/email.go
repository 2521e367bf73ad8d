// Package email holds address helpers shared by validation and notification.
package email

import (
	"strings"

	"github.com/asaskevich/govalidator"
)

// maxAddressLength is the RFC 5321 path limit.
const maxAddressLength = 254

// IsValid reports whether addr is a syntactically valid address of the form
// local@domain where the domain has at least two dot-separated labels.
func IsValid(addr string) bool {
	if addr == "" || len(addr) > maxAddressLength {
		return false
	}
	if !govalidator.IsEmail(addr) {
		return false
	}
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 {
		return false
	}
	labels := strings.Split(addr[at+1:], ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" {
			return false
		}
	}
	return true
}

// Mask hides the local part for logging, keeping the first rune and domain.
func Mask(addr string) string {
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 {
		return "***"
	}
	runes := []rune(addr[:at])
	return string(runes[0]) + "***" + addr[at:]
}
