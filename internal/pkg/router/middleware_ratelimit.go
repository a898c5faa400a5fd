package router

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

// middlewareRateLimit caps requests per client IP across every endpoint. It
// sits in front of the per-user passcode throttle and only guards the process.
func middlewareRateLimit(cfg config.Config) Middleware {
	if cfg == nil || !cfg.GetBool("app.rate_limit.enabled") {
		return func(next http.Handler) http.Handler { return next }
	}

	requests := cfg.GetInt("app.rate_limit.requests")
	window := cfg.GetSecond("app.rate_limit.window_seconds")
	if requests <= 0 || window <= 0 {
		requests, window = 60, time.Minute
	}

	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Error: "Too many requests, slow down", Code: goerror.CodeTooManyRequest.String()}, http.StatusTooManyRequests)
		}),
	)
}
