package auth

import (
	"net/http"

	"github.com/dmitrijs2005/timecapsule/internal/common"
	"github.com/dmitrijs2005/timecapsule/internal/logging"
)

// CookieStore carries session tokens in an HTTP-only cookie.
type CookieStore struct {
	codec  *Codec
	name   string
	secure bool
	logger logging.Logger
}

// NewCookieStore wraps codec. secure marks the cookie Secure, which is
// what production deployments want.
func NewCookieStore(codec *Codec, secure bool, logger logging.Logger) *CookieStore {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &CookieStore{
		codec:  codec,
		name:   common.SessionCookieName,
		secure: secure,
		logger: logger.With("module", "session"),
	}
}

// Name is the cookie name.
func (s *CookieStore) Name() string {
	return s.name
}

// Issue signs a session for partner and sets it on w.
func (s *CookieStore) Issue(w http.ResponseWriter, partner Partner) error {
	token, err := s.codec.Issue(partner)
	if err != nil {
		return err
	}
	http.SetCookie(w, s.cookie(token, int(s.codec.TTL().Seconds())))
	return nil
}

// Read returns the partner of a valid session cookie. A missing cookie and
// a cookie that fails verification are reported the same way.
func (s *CookieStore) Read(r *http.Request) (Partner, bool) {
	c, err := r.Cookie(s.name)
	if err != nil || c.Value == "" {
		return "", false
	}

	partner, err := s.codec.Verify(c.Value)
	if err != nil {
		s.logger.Debug(r.Context(), "session rejected", "reason", err.Error())
		return "", false
	}
	return partner, true
}

// Clear expires the session cookie on the client.
func (s *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie("", -1))
}

func (s *CookieStore) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
