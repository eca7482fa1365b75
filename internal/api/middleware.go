// Package api assembles the public HTTP API.
package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"campusnet/internal/common"
	"campusnet/internal/httpx"
)

// corsMiddleware adds CORS headers and answers preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Flush keeps event streams working behind the recorder.
func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func loggingMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)))
		})
	}
}

// authMiddleware validates the bearer token and puts the viewer on the
// request context. Browsers cannot set headers on an EventSource, so GET
// requests may pass the token as access_token instead.
func authMiddleware(tokens *common.TokenManager, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "api.auth"
			tokenString, ok := common.BearerToken(r.Header.Get("Authorization"))
			if !ok && r.Method == http.MethodGet {
				tokenString = r.URL.Query().Get("access_token")
				ok = tokenString != ""
			}
			if !ok {
				httpx.WriteError(w, log, common.Errorf(common.KindNotAuthenticated, op, "authorization required"))
				return
			}

			claims, err := tokens.ValidToken(tokenString)
			if err != nil {
				httpx.WriteError(w, log, common.Errorf(common.KindNotAuthenticated, op, "invalid or expired token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(common.WithViewer(r.Context(), claims.UserID)))
		})
	}
}
