package api

import (
	"crypto/subtle"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	headerRequestID   = "X-Request-ID"
	headerProcessTime = "X-Process-Time"
	headerAPIKey      = "X-API-Key"
)

// statusRecorder captures the status code a handler writes.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// requestIDMiddleware assigns every request an id, honoring one the caller
// already sent.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs one line per request and reports the handling time
// in the X-Process-Time header.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		// The header must be set before the handler writes the status line.
		trailerSafe := &processTimeWriter{statusRecorder: rec, start: start}
		next.ServeHTTP(trailerSafe, r)

		s.log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", w.Header().Get(headerRequestID)),
		)
	})
}

// processTimeWriter injects X-Process-Time just before the response header
// is flushed.
type processTimeWriter struct {
	*statusRecorder
	start time.Time
	wrote bool
}

func (p *processTimeWriter) WriteHeader(status int) {
	if !p.wrote {
		p.wrote = true
		p.Header().Set(headerProcessTime, time.Since(p.start).String())
	}

	p.statusRecorder.WriteHeader(status)
}

func (p *processTimeWriter) Write(b []byte) (int, error) {
	if !p.wrote {
		p.WriteHeader(http.StatusOK)
	}

	return p.statusRecorder.ResponseWriter.Write(b)
}

// recoverMiddleware turns a handler panic into an opaque 500 problem.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("handler panic",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
				)
				writeProblem(w, r, http.StatusInternalServerError, "Internal server error", "")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// limiterPool hands out one token bucket per caller.
type limiterPool struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newLimiterPool(perSecond float64, burst int) *limiterPool {
	if burst <= 0 {
		burst = 1
	}

	return &limiterPool{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, found := p.limiters[key]
	if !found {
		l = rate.NewLimiter(p.limit, p.burst)
		p.limiters[key] = l
	}

	return l
}

// callerKey identifies a caller for rate limiting: the API key when one was
// sent, otherwise the remote address.
func callerKey(r *http.Request) string {
	if key := r.Header.Get(headerAPIKey); key != "" {
		return "key:" + key
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "addr:" + r.RemoteAddr
	}

	return "addr:" + host
}

// rateLimitMiddleware rejects callers that exceed their bucket with a 429
// problem.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	if s.limiters == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiters.get(callerKey(r)).Allow() {
			writeProblem(w, r, http.StatusTooManyRequests, "Rate limit exceeded",
				"request rate exceeds the configured limit")

			return
		}

		next.ServeHTTP(w, r)
	})
}

// authMiddleware requires the configured API key on every request it wraps.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	if s.cfg.APIKey == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(headerAPIKey)
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.cfg.APIKey)) != 1 {
			writeProblem(w, r, http.StatusUnauthorized, "Unauthorized",
				"missing or invalid API key")

			return
		}

		next.ServeHTTP(w, r)
	})
}
