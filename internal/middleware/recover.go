package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// Recover turns a panic into a JSON 500 and logs it with the stack trace.
func Recover(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					rid := RequestIDFromContext(r.Context())
					log.Error("panic",
						zap.String("request_id", rid),
						zap.String("path", r.URL.Path),
						zap.Any("err", rec),
						zap.ByteString("stack", debug.Stack()))
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"error":"internal","request_id":"` + rid + `"}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
