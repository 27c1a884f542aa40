// Package auth owns partner identity: who the two partners are, how their
// passwords are checked, and how a signed session token and its cookie are
// issued and verified.
package auth

import "strings"

// Partner identifies one of the two capsule authors.
type Partner string

const (
	PartnerACW Partner = "ACW"
	PartnerSLS Partner = "SLS"
)

// Partners lists every known identity.
var Partners = []Partner{PartnerACW, PartnerSLS}

// Valid reports whether p is one of the two known partners.
func (p Partner) Valid() bool {
	return p == PartnerACW || p == PartnerSLS
}

func (p Partner) String() string {
	return string(p)
}

// ParsePartner accepts initials exactly as a partner would type them:
// surrounding space is ignored but the case must already be upper.
func ParsePartner(raw string) (Partner, bool) {
	p := Partner(strings.TrimSpace(raw))
	if !p.Valid() {
		return "", false
	}
	return p, true
}
