package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// requestLogger writes one zerolog line per request. The level follows the
// status: 5xx error, 4xx warn, everything else info.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			var e *zerolog.Event
			switch {
			case status >= http.StatusInternalServerError:
				e = log.Error()
			case status >= http.StatusBadRequest:
				e = log.Warn()
			default:
				e = log.Info()
			}

			e.Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("ip", r.RemoteAddr).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("latency", time.Since(start)).
				Msg("API")
		}()

		next.ServeHTTP(ww, r)
	})
}
