package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"meshwork/internal/httputil"
)

// Recovery turns a handler panic into a logged 500. When the handler had
// already started its response, the connection is left as is.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newStatusRecorder(w)
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				logger.Error("panic recovered",
					"panic", v,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", httputil.GetRequestID(r),
					"response_started", rec.wroteHeader,
					"stack", string(debug.Stack()),
				)
				if !rec.wroteHeader {
					httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
