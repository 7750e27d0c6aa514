// haven/middlewares/request_logger.go
package middlewares

import (
	"context"
	"net/http"
	"time"

	"haven/haven/utils/logging"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestLogger tags each request with a trace id and writes one line per
// request to the request log. Bodies are never logged.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := uuid.NewString()
		ctx := context.WithValue(r.Context(), logging.TraceIDKey, traceID)
		w.Header().Set("X-Trace-Id", traceID)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			logging.RequestLogger.Info("request",
				zap.String("trace_id", traceID),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		}()
		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}
