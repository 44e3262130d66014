// Package middleware provides HTTP middleware for the storefront API.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/storefront/internal/logging"
)

// Logger logs one structured entry per request with its status and timing.
// Entries carry chi's request ID through logging.FromContext, and the user
// id when the request was authenticated.
//
// Log fields:
//   - method, path, status
//   - duration_ms: time spent in the handler chain
//   - bytes: response body size
//   - ip: client address (RemoteAddr, rewritten by TrustedRealIP)
//   - user_id: set for customer routes
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		// UserAuth runs further down the chain and reports the user here.
		holder := &requestUser{}
		next.ServeHTTP(ww, r.WithContext(withRequestUser(r.Context(), holder)))

		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", ww.bytes,
			"ip", r.RemoteAddr,
		}
		if holder.set {
			args = append(args, "user_id", holder.id)
		}

		logger := logging.FromContext(r.Context())
		switch {
		case ww.status >= 500:
			logger.Error("request", args...)
		case ww.status >= 400:
			logger.Warn("request", args...)
		default:
			logger.Info("request", args...)
		}
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Unwrap provides access to the underlying ResponseWriter for
// http.ResponseController.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

type requestUser struct {
	id  uuid.UUID
	set bool
}

type requestUserKey struct{}

func withRequestUser(ctx context.Context, u *requestUser) context.Context {
	return context.WithValue(ctx, requestUserKey{}, u)
}

// noteUser records the authenticated user for the request log entry.
func noteUser(ctx context.Context, id uuid.UUID) {
	if u, ok := ctx.Value(requestUserKey{}).(*requestUser); ok {
		u.id, u.set = id, true
	}
}
