package middleware

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/niexiaoning/deep-searcher/internal/config"
	"github.com/niexiaoning/deep-searcher/internal/metrics"
	"github.com/niexiaoning/deep-searcher/pkg/logger_i"
	"golang.org/x/time/rate"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

// Middleware runs trace injection, bearer auth and per-IP rate limiting in
// that order and counts every response.
type Middleware struct {
	authToken      string
	allowAnonymous bool
	limiter        *IPRateLimiter
	logger         *logger_i.Logger
}

// New rejects every request when authToken is empty, unless allowAnonymous
// is set.
func New(authToken string, allowAnonymous bool) *Middleware {
	return &Middleware{
		authToken:      authToken,
		allowAnonymous: allowAnonymous,
		limiter:        NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND),
		logger:         logger_i.NewLogger("middleware"),
	}
}

func (m *Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		re := m.processRequest(requestResponseStruct{req: r, writer: rec, logger: m.logger})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
		} else {
			next(rec, re.req)
		}

		metrics.HttpRequestsTotal.WithLabelValues(routePattern(r), strconv.Itoa(rec.Status)).Inc()
	}
}

func (m *Middleware) processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger.Debug("New request received", "method", re.req.Method, "path", re.req.URL.Path)
	steps := []func(requestResponseStruct) requestResponseStruct{
		injectTrace,
		m.authenticate,
		m.rateLimiter,
	}
	for _, step := range steps {
		re = step(re)
		if re.badRequest.isBadRequest {
			return re
		}
	}
	return re
}

// routePattern keeps the path label bounded, /status/{id} instead of every id.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
