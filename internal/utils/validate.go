package utils

import (
	"net/url"
	"regexp"
)

// emailPattern is the exact check the product has always used: one
// non-space local part, an @, and a domain containing a dot. Deliberately
// not a full RFC 5322 validator; "a@b" must be rejected locally.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like local@domain.tld.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidSiteURL reports whether s parses as an absolute URL with a host,
// e.g. https://mysite.com.
func ValidSiteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
