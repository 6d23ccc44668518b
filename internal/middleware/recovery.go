package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/mattbennet/lentra/internal/handler"
	"github.com/mattbennet/lentra/internal/logging"
)

// Recovery turns a handler panic into a 500 response instead of a dropped
// connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			logging.FromContext(r.Context()).Error("panic recovered",
				"error", v,
				"stack", string(debug.Stack()),
			)
			handler.RespondAppError(w, handler.ErrInternalError, nil)
		}()
		next.ServeHTTP(w, r)
	})
}
