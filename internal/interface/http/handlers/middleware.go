package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE TYPES
// ══════════════════════════════════════════════════════════════════════════════

// Middleware is a function that wraps an http.HandlerFunc.
type Middleware func(http.HandlerFunc) http.HandlerFunc

// Chain applies middlewares to a handler function in order.
func Chain(h http.HandlerFunc, middlewares ...Middleware) http.HandlerFunc {
	// Apply in reverse so the first middleware is the outermost
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN TOKEN MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// AdminTokenAuth guards the admin endpoints with a single bearer token.
// Only the bcrypt hash of the token is configured on the server, so a
// config dump never leaks the token itself.
func AdminTokenAuth(tokenHash string) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			// If no hash is configured, the admin surface is disabled entirely.
			if tokenHash == "" {
				http.Error(w, `{"error":"admin endpoints disabled"}`, http.StatusForbidden)
				return
			}

			token := extractBearerToken(r)
			if token == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
				http.Error(w, `{"error":"missing admin token"}`, http.StatusUnauthorized)
				return
			}

			if err := bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)); err != nil {
				http.Error(w, `{"error":"invalid admin token"}`, http.StatusUnauthorized)
				return
			}

			next(w, r)
		}
	}
}

// extractBearerToken pulls the token from the Authorization header,
// falling back to the X-Admin-Token header for curl convenience.
func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.Header.Get("X-Admin-Token")
}

// ══════════════════════════════════════════════════════════════════════════════
// UTILITY MIDDLEWARES
// ══════════════════════════════════════════════════════════════════════════════

// TimeoutMiddleware adds a timeout to request processing.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next(w, r.WithContext(ctx))
		}
	}
}

// SecurityHeadersMiddleware adds standard security headers.
func SecurityHeadersMiddleware() Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			next(w, r)
		}
	}
}

// RequestSizeLimitMiddleware limits the size of request bodies.
func RequestSizeLimitMiddleware(maxBytes int64) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next(w, r)
		}
	}
}
