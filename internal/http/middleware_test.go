package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/classboard/classboard/internal/domain/auth"
	mockauth "github.com/classboard/classboard/internal/mocks/auth"
)

func okHandler(sawSession **domainauth.Session) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sawSession != nil {
			*sawSession = GetSessionFromContext(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthBrowser_AnonymousRedirectsToLogin(t *testing.T) {
	codec := mockauth.NewFakeCodec()
	auth := SessionAuth{Codec: codec, CookieName: testCookieName}

	h := RequireAuthBrowser(auth)(okHandler(nil))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assignments?q=quiz", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?redirectTo=%2Fassignments%3Fq%3Dquiz", rec.Header().Get("Location"))
}

func TestRequireAuthBrowser_RootOmitsRedirectTo(t *testing.T) {
	auth := SessionAuth{Codec: mockauth.NewFakeCodec(), CookieName: testCookieName}

	h := RequireAuthBrowser(auth)(okHandler(nil))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequireAuthBrowser_ValidCookiePasses(t *testing.T) {
	codec := mockauth.NewFakeCodec()
	auth := SessionAuth{Codec: codec, CookieName: testCookieName}

	var saw *domainauth.Session
	h := RequireAuthBrowser(auth)(okHandler(&saw))

	r := withCookie(t, httptest.NewRequest(http.MethodGet, "/", nil), codec, teacherTestSession())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, saw)
	assert.Equal(t, "teacher-1", saw.UserID)
	assert.Equal(t, domainauth.RoleTeacher, saw.Role)
}

func TestRequireAuthBrowser_TamperedCookieIsAnonymous(t *testing.T) {
	auth := SessionAuth{Codec: mockauth.NewFakeCodec(), CookieName: testCookieName}

	h := RequireAuthBrowser(auth)(okHandler(nil))
	r := httptest.NewRequest(http.MethodGet, "/users", nil)
	r.AddCookie(&http.Cookie{Name: testCookieName, Value: "forged"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/login")
}

func TestRequireRoleBrowser_WrongRoleGoesToUnauthorized(t *testing.T) {
	codec := mockauth.NewFakeCodec()
	auth := SessionAuth{Codec: codec, CookieName: testCookieName}

	h := RequireRoleBrowser(auth, domainauth.RoleAdmin)(okHandler(nil))
	r := withCookie(t, httptest.NewRequest(http.MethodGet, "/users", nil), codec, studentTestSession())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/unauthorized", rec.Header().Get("Location"))
}

func TestRequireRoleBrowser_AnonymousGoesToLogin(t *testing.T) {
	auth := SessionAuth{Codec: mockauth.NewFakeCodec(), CookieName: testCookieName}

	h := RequireRoleBrowser(auth, domainauth.RoleAdmin)(okHandler(nil))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?redirectTo=%2Fusers", rec.Header().Get("Location"))
}

func TestRequireRoleBrowser_AllowedRolePasses(t *testing.T) {
	codec := mockauth.NewFakeCodec()
	auth := SessionAuth{Codec: codec, CookieName: testCookieName}

	h := RequireRoleBrowser(auth, domainauth.RoleAdmin, domainauth.RoleTeacher)(okHandler(nil))
	r := withCookie(t, httptest.NewRequest(http.MethodGet, "/assignments", nil), codec, teacherTestSession())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSafeRedirectPath(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		want      string
	}{
		{"empty", "", "/"},
		{"plain path", "/assignments", "/assignments"},
		{"path with query", "/users?q=doe&page=2", "/users?q=doe&page=2"},
		{"absolute url", "https://evil.example/phish", "/"},
		{"protocol relative", "//evil.example", "/"},
		{"backslash smuggling", "/\\evil.example", "/"},
		{"relative path", "users", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, safeRedirectPath(tt.candidate))
		})
	}
}

func TestAcceptsGzip(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"plain gzip", "gzip", true},
		{"multiple encodings", "deflate, gzip;q=0.8, br", true},
		{"gzip opted out", "gzip;q=0", false},
		{"no gzip", "br, deflate", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, acceptsGzip(tt.header))
		})
	}
}

func TestCompression_GzipsHTML(t *testing.T) {
	h := Compression(CompressionConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>hello</html>"))
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.Contains(t, rec.Header().Values("Vary"), "Accept-Encoding")
}

func TestCompression_SkipsNonCompressibleTypes(t *testing.T) {
	h := Compression(CompressionConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	}))

	r := httptest.NewRequest(http.MethodGet, "/logo.png", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Empty(t, rec.Header().Get("Content-Encoding"))
}
