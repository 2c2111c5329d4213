// Package validation checks identity configuration values and reports each
// outcome as an explicit Verdict instead of a bare bool.
package validation

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/asaskevich/govalidator"
)

const (
	maxEmailLength = "320"
	maxURILength   = "2048"
)

// Exactly one '@', no whitespace, and a dotted domain. RE2's \s omits \v, so
// it is listed explicitly.
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

// Verdict is the outcome of validating one field.
type Verdict struct {
	Valid  bool
	Reason string
}

var ok = Verdict{Valid: true}

func invalid(reason string) Verdict {
	return Verdict{Reason: reason}
}

// Email validates an account address.
func Email(v string) Verdict {
	if v == "" {
		return invalid("email is empty")
	}
	if !govalidator.StringLength(v, "3", maxEmailLength) {
		return invalid("email exceeds " + maxEmailLength + " characters")
	}
	if !emailPattern.MatchString(v) {
		return invalid("email must be local@domain.tld")
	}
	return ok
}

// TrimURI strips leading and trailing C0 controls and spaces, the same
// characters URL parsers in browsers ignore around an input.
func TrimURI(v string) string {
	return strings.TrimFunc(v, func(r rune) bool { return r <= ' ' })
}

// AbsoluteURI validates an alias or link target. Hierarchical URIs need a
// host; opaque ones such as mailto: or acct: need opaque data.
func AbsoluteURI(v string) Verdict {
	if v == "" {
		return invalid("uri is empty")
	}
	if !govalidator.StringLength(v, "1", maxURILength) {
		return invalid("uri exceeds " + maxURILength + " characters")
	}
	u, err := url.Parse(v)
	if err != nil {
		return invalid("uri does not parse")
	}
	if u.Scheme == "" {
		return invalid("uri is not absolute")
	}
	if u.Opaque != "" {
		return ok
	}
	if u.Host == "" {
		return invalid("uri has no host")
	}
	return ok
}
