package httpx

import (
	"compress/gzip"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	domainauth "github.com/classboard/classboard/internal/domain/auth"
	"github.com/classboard/classboard/internal/ports"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SessionAuth reads the signed session cookie. The cookie is the sole source
// of truth for authentication; a missing, tampered, or expired cookie is
// simply an anonymous request.
type SessionAuth struct {
	Codec      ports.SessionCodec
	CookieName string
}

// SessionFromRequest decodes the session cookie, returning nil when the
// request carries no valid session.
func (a SessionAuth) SessionFromRequest(r *http.Request) *domainauth.Session {
	if a.Codec == nil || a.CookieName == "" {
		return nil
	}
	cookie, err := r.Cookie(a.CookieName)
	if err != nil {
		return nil
	}
	sess, err := a.Codec.Decode(cookie.Value)
	if err != nil {
		return nil
	}
	return &sess
}

// RequireAuthBrowser returns a middleware that requires a valid session.
// Anonymous requests are redirected to the login page with the current URL
// carried in redirectTo so the user lands back where they started.
func RequireAuthBrowser(auth SessionAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := auth.SessionFromRequest(r)
			if session == nil {
				redirectToLogin(w, r)
				return
			}
			ctx := SetSessionInContext(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoleBrowser returns a middleware that requires a session holding one
// of the allowed roles. Anonymous requests go to login; authenticated
// requests with the wrong role land on the unauthorized page. The two cases
// stay distinct so a signed-in user is never bounced through login again.
func RequireRoleBrowser(auth SessionAuth, allowed ...domainauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := auth.SessionFromRequest(r)
			if session == nil {
				redirectToLogin(w, r)
				return
			}
			if !roleAllowed(session.Role, allowed) {
				http.Redirect(w, r, "/unauthorized", http.StatusSeeOther)
				return
			}
			ctx := SetSessionInContext(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth returns a middleware that adds the session to the context when
// present, without requiring one.
func OptionalAuth(auth SessionAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session := auth.SessionFromRequest(r); session != nil {
				r = r.WithContext(SetSessionInContext(r.Context(), session))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func roleAllowed(role domainauth.Role, allowed []domainauth.Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// redirectToLogin redirects anonymous requests to the login page with the
// current URL as redirectTo.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	redirectPath := safeRedirectPath(r.URL.RequestURI())
	loginURL := "/login"
	if redirectPath != "/" {
		loginURL += "?redirectTo=" + url.QueryEscape(redirectPath)
	}
	http.Redirect(w, r, loginURL, http.StatusSeeOther)
}

// CompressionConfig holds configuration for the compression middleware.
type CompressionConfig struct {
	Level  int // gzip level 1-9
	Logger *slog.Logger
}

//nolint:gochecknoglobals // shared across requests to reuse gzip writers
var gzipPool sync.Pool

// Compression returns a middleware that gzips HTML/CSS/JS/JSON responses for
// clients that accept it. Already-encoded responses and HEAD requests pass
// through untouched.
func Compression(cfg CompressionConfig) func(http.Handler) http.Handler {
	if cfg.Level < gzip.BestSpeed || cfg.Level > gzip.BestCompression {
		cfg.Level = gzip.DefaultCompression
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || !acceptsGzip(r.Header.Get("Accept-Encoding")) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Accept-Encoding")
			gzw := &gzipResponseWriter{ResponseWriter: w, level: cfg.Level}
			next.ServeHTTP(gzw, r)
			if gzw.gz != nil {
				if err := gzw.gz.Close(); err != nil {
					cfg.Logger.ErrorContext(r.Context(), "closing gzip writer failed", "error", err)
				}
				gzipPool.Put(gzw.gz)
			}
		})
	}
}

// acceptsGzip checks whether the client accepts gzip, respecting q=0 opt-outs.
func acceptsGzip(acceptEncoding string) bool {
	for _, part := range strings.Split(acceptEncoding, ",") {
		encoding, params, _ := strings.Cut(strings.TrimSpace(strings.ToLower(part)), ";")
		if strings.TrimSpace(encoding) != "gzip" {
			continue
		}
		switch strings.TrimSpace(params) {
		case "q=0", "q=0.0", "q=0.00", "q=0.000":
			return false
		}
		return true
	}
	return false
}

//nolint:gochecknoglobals // read-only lookup shared across requests
var compressibleTypes = map[string]bool{
	"text/html":              true,
	"text/css":               true,
	"text/plain":             true,
	"text/javascript":        true,
	"application/javascript": true,
	"application/json":       true,
	"image/svg+xml":          true,
}

func isCompressibleContentType(contentType string) bool {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return compressibleTypes[strings.TrimSpace(strings.ToLower(contentType))]
}

// gzipResponseWriter wraps http.ResponseWriter and decides at WriteHeader
// time whether the response is worth compressing.
type gzipResponseWriter struct {
	http.ResponseWriter
	level         int
	gz            *gzip.Writer
	headerWritten bool
}

func (w *gzipResponseWriter) WriteHeader(statusCode int) {
	if w.headerWritten {
		return
	}
	w.headerWritten = true

	skip := statusCode < 200 ||
		statusCode == http.StatusNoContent ||
		statusCode == http.StatusNotModified ||
		w.Header().Get("Content-Encoding") != "" ||
		!isCompressibleContentType(w.Header().Get("Content-Type"))
	if !skip {
		if pooled, ok := gzipPool.Get().(*gzip.Writer); ok && pooled != nil {
			w.gz = pooled
		} else {
			w.gz, _ = gzip.NewWriterLevel(nil, w.level)
		}
		w.gz.Reset(w.ResponseWriter)
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Del("Content-Length")
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	if !w.headerWritten {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", http.DetectContentType(b))
		}
		w.WriteHeader(http.StatusOK)
	}
	if w.gz != nil {
		return w.gz.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// Flush implements http.Flusher for streaming support.
func (w *gzipResponseWriter) Flush() {
	if w.gz != nil {
		_ = w.gz.Flush()
	}
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
