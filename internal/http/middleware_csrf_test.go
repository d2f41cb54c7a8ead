package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfTestHandler() (http.Handler, *string) {
	var seenToken string
	h := CSRFProtection(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenToken = GetCSRFToken(r)
		w.WriteHeader(http.StatusOK)
	}))
	return h, &seenToken
}

func TestCSRFProtection_GetIssuesCookieAndToken(t *testing.T) {
	h, seenToken := csrfTestHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, *seenToken)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == DefaultCSRFCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, *seenToken, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestCSRFProtection_PostWithoutTokenForbidden(t *testing.T) {
	h, _ := csrfTestHandler()

	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("username=a"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFProtection_PostWithMatchingTokenPasses(t *testing.T) {
	h, _ := csrfTestHandler()

	// First GET to obtain the token cookie.
	getRec := httptest.NewRecorder()
	h.ServeHTTP(getRec, httptest.NewRequest(http.MethodGet, "/login", nil))
	cookies := getRec.Result().Cookies()
	require.NotEmpty(t, cookies)
	token := cookies[0].Value

	form := url.Values{"csrf_token": {token}, "username": {"a"}}
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFProtection_PostWithMismatchedTokenForbidden(t *testing.T) {
	h, _ := csrfTestHandler()

	form := url.Values{"csrf_token": {"not-the-cookie"}}
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "cookie-token"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestIsRequestSecure(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, isRequestSecure(r))

	r.Header.Set("X-Forwarded-Proto", "https")
	assert.True(t, isRequestSecure(r))

	r.Header.Set("X-Forwarded-Proto", "http, https")
	assert.True(t, isRequestSecure(r))

	r.Header.Set("X-Forwarded-Proto", "http")
	assert.False(t, isRequestSecure(r))
}
