package httpserver

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postLogin(t *testing.T, env *testEnv, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "vtimecapsule_session" {
			return c
		}
	}
	return nil
}

func TestLogin_SuccessSetsCookieAndRedirects(t *testing.T) {
	env := newTestEnv(t, time.Now())

	rec := postLogin(t, env, url.Values{"initials": {"ACW"}, "password": {"lovebirds"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/write", rec.Header().Get("Location"))

	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "/", c.Path)

	partner, err := env.codec.Verify(c.Value)
	require.NoError(t, err)
	assert.Equal(t, "ACW", partner.String())
}

func TestLogin_HonoursLocalFrom(t *testing.T) {
	env := newTestEnv(t, time.Now())

	rec := postLogin(t, env, url.Values{"initials": {"ACW"}, "password": {"lovebirds"}, "from": {"/open?year=2024"}})
	assert.Equal(t, "/open?year=2024", rec.Header().Get("Location"))

	rec = postLogin(t, env, url.Values{"initials": {"ACW"}, "password": {"lovebirds"}, "from": {"//evil.example"}})
	assert.Equal(t, "/write", rec.Header().Get("Location"))

	rec = postLogin(t, env, url.Values{"initials": {"ACW"}, "password": {"lovebirds"}, "from": {"https://evil.example"}})
	assert.Equal(t, "/write", rec.Header().Get("Location"))

	for _, from := range []string{"/\t/evil.example", "/ /evil.example", "/\\evil.example"} {
		rec = postLogin(t, env, url.Values{"initials": {"ACW"}, "password": {"lovebirds"}, "from": {from}})
		assert.Equal(t, "/write", rec.Header().Get("Location"), "from %q", from)
	}
}

func TestLogin_Failures(t *testing.T) {
	env := newTestEnv(t, time.Now())

	tests := []struct {
		name    string
		form    url.Values
		message string
	}{
		{"lowercase initials", url.Values{"initials": {"acw"}, "password": {"lovebirds"}}, msgBadInitials},
		{"unknown initials", url.Values{"initials": {"C"}, "password": {"lovebirds"}}, msgBadInitials},
		{"missing password", url.Values{"initials": {"ACW"}}, msgNoPassword},
		{"wrong password", url.Values{"initials": {"ACW"}, "password": {"nope"}}, msgWrongPassword},
		{"partner without credentials", url.Values{"initials": {"SLS"}, "password": {"lovebirds"}}, msgNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := tt.form
			form.Set("from", "/board")
			rec := postLogin(t, env, form)

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Nil(t, sessionCookie(rec))

			loc, err := url.Parse(rec.Header().Get("Location"))
			require.NoError(t, err)
			assert.Equal(t, "/login", loc.Path)
			assert.Equal(t, tt.message, loc.Query().Get("error"))
			assert.Equal(t, "/board", loc.Query().Get("from"))
		})
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	env := newTestEnv(t, time.Now())

	rec := env.do(t, "SLS", http.MethodPost, "/api/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestLogout_RequiresSession(t *testing.T) {
	env := newTestEnv(t, time.Now())

	rec := env.do(t, "", http.MethodPost, "/api/logout", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSafeRedirect(t *testing.T) {
	assert.Equal(t, "/write", safeRedirect("/write"))
	assert.Equal(t, "", safeRedirect(""))
	assert.Equal(t, "", safeRedirect("write"))
	assert.Equal(t, "", safeRedirect("//x"))
	assert.Equal(t, "", safeRedirect(`/\x`))
	assert.Equal(t, "", safeRedirect(`/a\b`))
	assert.Equal(t, "", safeRedirect("/\t/evil.example"))
	assert.Equal(t, "", safeRedirect("/\n/evil.example"))
	assert.Equal(t, "", safeRedirect("/ /evil.example"))
	assert.Equal(t, "", safeRedirect("/\x00/evil.example"))
	assert.Equal(t, "/open?year=2024#top", safeRedirect("/open?year=2024#top"))
	assert.Equal(t, "/board?caption=a%20b", safeRedirect("/board?caption=a%20b"))
}

func TestLoginState(t *testing.T) {
	env := newTestEnv(t, time.Now())

	req := httptest.NewRequest(http.MethodGet, "/login?error=nope&from=%2F%2Fevil.example", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "nope", body["error"])
	assert.Equal(t, "", body["from"])

	req = httptest.NewRequest(http.MethodGet, "/login?from=%2Fboard%3Fyear%3D2025", nil)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/board?year=2025", decodeBody(t, rec)["from"])
}
