package httpserver

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/timecapsule/internal/server/auth"
)

type ctxKey string

const partnerKey ctxKey = "partner"

var (
	publicPaths    = map[string]bool{"/login": true, "/api/health": true}
	publicPrefixes = []string{"/static/", "/favicon"}
)

// isPublic reports whether path may be served without a session.
func isPublic(path string) bool {
	if publicPaths[path] {
		return true
	}
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Gate admits public paths unconditionally and everything else only with a
// valid session cookie. API callers without a session get a 401 JSON body;
// page requests are redirected to the login page.
func Gate(sessions *auth.CookieStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			partner, ok := sessions.Read(r)
			if !ok {
				if strings.HasPrefix(r.URL.Path, "/api/") {
					respondError(w, http.StatusUnauthorized, "Unauthorized")
					return
				}
				http.Redirect(w, r, "/login?from="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), partnerKey, partner)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PartnerFromContext returns the partner the gate attached to ctx.
func PartnerFromContext(ctx context.Context) (auth.Partner, bool) {
	p, ok := ctx.Value(partnerKey).(auth.Partner)
	return p, ok && p.Valid()
}
