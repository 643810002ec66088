package httpmw

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/menezmethod/handoff/internal/apierror"
)

// Recover returns middleware that turns a handler panic into a 500 JSON
// error and counts it. http.ErrAbortHandler is re-raised so net/http can
// drop the connection.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				route := routeLabel(r.URL.Path)
				httpPanicsTotal.WithLabelValues(route).Inc()
				logger.LogAttrs(r.Context(), slog.LevelError, "handler panicked",
					slog.String("error", fmt.Sprint(v)),
					slog.String("method", r.Method),
					slog.String("route", route),
					slog.String("client", ClientKey(r)),
					slog.String("request_id", RequestIDFromContext(r.Context())),
					slog.String("stack", string(debug.Stack())),
				)
				apierror.Write(w, apierror.Internal("Internal server error."))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
