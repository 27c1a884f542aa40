package httpserver

import (
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/timecapsule/internal/server/auth"
)

const defaultLanding = "/write"

const (
	msgBadInitials   = "Initials must be ACW or SLS in uppercase."
	msgNoPassword    = "Password is required."
	msgNotConfigured = "Password is not configured. Set ACW_PASSWORD_HASH and SLS_PASSWORD_HASH."
	msgWrongPassword = "That password does not match our records."
)

// safeRedirect keeps only same-site absolute paths. Backslashes and
// whitespace are refused since browsers fold them into "//host".
func safeRedirect(from string) string {
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") {
		return ""
	}
	if strings.ContainsRune(from, '\\') || strings.IndexFunc(from, unicode.IsSpace) >= 0 {
		return ""
	}
	u, err := url.Parse(from)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return from
}

// loginState reports the pending login error and a sanitised return path
// for whatever renders the login form.
func (h *handlers) loginState(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	respondJSON(w, http.StatusOK, map[string]string{
		"error": q.Get("error"),
		"from":  safeRedirect(q.Get("from")),
	})
}

func loginFailure(w http.ResponseWriter, r *http.Request, message, from string) {
	q := url.Values{}
	q.Set("error", message)
	if from != "" {
		q.Set("from", from)
	}
	http.Redirect(w, r, "/login?"+q.Encode(), http.StatusSeeOther)
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		loginFailure(w, r, msgBadInitials, "")
		return
	}
	from := safeRedirect(r.PostForm.Get("from"))

	partner, ok := auth.ParsePartner(r.PostForm.Get("initials"))
	if !ok {
		loginFailure(w, r, msgBadInitials, from)
		return
	}

	password := r.PostForm.Get("password")
	if password == "" {
		loginFailure(w, r, msgNoPassword, from)
		return
	}
	if !h.authenticator.Configured(partner) {
		h.logger.Warn(r.Context(), "login attempt without configured credentials", "partner", partner.String())
		loginFailure(w, r, msgNotConfigured, from)
		return
	}
	if !h.authenticator.Verify(partner, password) {
		h.logger.Info(r.Context(), "login rejected", "partner", partner.String())
		loginFailure(w, r, msgWrongPassword, from)
		return
	}

	if err := h.sessions.Issue(w, partner); err != nil {
		h.logger.Error(r.Context(), "issue session", "error", err)
		respondError(w, http.StatusInternalServerError, "Unable to sign in.")
		return
	}

	h.logger.Info(r.Context(), "partner signed in", "partner", partner.String())
	if from == "" {
		from = defaultLanding
	}
	http.Redirect(w, r, from, http.StatusSeeOther)
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
