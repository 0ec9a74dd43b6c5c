package middleware

import (
	"context"
	"net/http"
	"time"

	"anara-skills/registrar/internal/auth"
	"anara-skills/registrar/internal/logging"
)

const requestMetaKey ctxKey = "request_meta"

// requestMeta is filled in by handlers further down the chain so the access
// log can name the caller.
type requestMeta struct {
	userID string
	role   string
}

// Logging writes one structured line per completed request.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta := &requestMeta{}
		r = r.WithContext(context.WithValue(r.Context(), requestMetaKey, meta))

		lw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(lw, r)
		dur := time.Since(start)

		log := logging.WithRequest(GetRequestID(r.Context()), meta.userID, meta.role, routePattern(r))
		fields := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", lw.statusCode,
			"duration_ms", dur.Milliseconds(),
			"remote_ip", clientIP(r),
		}
		if lw.statusCode >= http.StatusInternalServerError {
			log.Errorw("HTTP request completed", fields...)
			return
		}
		log.Infow("HTTP request completed", fields...)
	})
}

// annotate records the authenticated caller for the access log.
func annotate(ctx context.Context, claims auth.UserClaims) {
	if meta, ok := ctx.Value(requestMetaKey).(*requestMeta); ok && claims != nil {
		meta.userID = claims.UserID()
		meta.role = claims.Role().String()
	}
}
