package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"
)

// WriteKeyHeader carries the shared key for mutating requests.
const WriteKeyHeader = "X-League-Key"

// withLogging attaches a request scoped logger to the context and logs each
// completed request.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())
		logger := s.log.With().Str("request_id", requestID).Logger()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context())))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	})
}

func (s *Server) requireWriteKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.writeKeyHash) == 0 || !isWrite(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		key := r.Header.Get(WriteKeyHeader)
		if key == "" || bcrypt.CompareHashAndPassword(s.writeKeyHash, []byte(key)) != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{
				Error:     "missing or invalid write key",
				RequestID: middleware.GetReqID(r.Context()),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
