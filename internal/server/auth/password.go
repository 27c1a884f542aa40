package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/timecapsule/internal/server/config"
)

// Authenticator checks partner passwords against configured credentials.
type Authenticator struct {
	hashes map[Partner]string
	plain  map[Partner]string
}

// NewAuthenticator reads the partner credentials. A shared plaintext
// password applies to both partners and overrides per-partner plaintext.
func NewAuthenticator(c config.Credentials) *Authenticator {
	a := &Authenticator{
		hashes: map[Partner]string{
			PartnerACW: strings.TrimSpace(c.ACWPasswordHash),
			PartnerSLS: strings.TrimSpace(c.SLSPasswordHash),
		},
		plain: map[Partner]string{
			PartnerACW: strings.TrimSpace(c.ACWPassword),
			PartnerSLS: strings.TrimSpace(c.SLSPassword),
		},
	}
	if shared := strings.TrimSpace(c.SharedPassword); shared != "" {
		a.plain[PartnerACW] = shared
		a.plain[PartnerSLS] = shared
	}
	return a
}

// Configured reports whether partner has any credential at all.
func (a *Authenticator) Configured(partner Partner) bool {
	return a.hashes[partner] != "" || a.plain[partner] != ""
}

// Verify checks password for partner. A bcrypt hash takes precedence over
// a plaintext password; a partner without credentials never verifies.
func (a *Authenticator) Verify(partner Partner, password string) bool {
	if !partner.Valid() || password == "" {
		return false
	}
	if hash := a.hashes[partner]; hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}
	plain := a.plain[partner]
	if plain == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(plain), []byte(password)) == 1
}
