// Package session owns the terminal connection lifecycle and the call
// discipline around it. The terminal API is synchronous and not thread-safe:
// only one call may be in flight per connection. Every venue call is funneled
// through a single worker goroutine, which gives concurrent callers FIFO
// ordering without exposing the terminal handle to anyone else.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rxtech-lab/mt5-bridge/internal/logger"
	"github.com/rxtech-lab/mt5-bridge/internal/terminal"
	"github.com/rxtech-lab/mt5-bridge/pkg/errors"
	"go.uber.org/zap"
)

const defaultQueueSize = 64

// Config controls the connection attempt and retry behavior.
type Config struct {
	Init terminal.InitParams
	// RetryCount is the number of additional initialize attempts after a
	// failed first one.
	RetryCount int
	// RetryInterval is the base backoff; attempt i sleeps i*RetryInterval.
	RetryInterval time.Duration
}

type call struct {
	ctx  context.Context
	name string
	fn   func(terminal.API) error
	done chan error
}

// Session is the sole owner of the terminal handle. All venue calls route
// through Do; nothing else may touch the API concurrently.
type Session struct {
	api terminal.API
	cfg Config
	log *logger.Logger

	mu    sync.Mutex
	ready bool

	calls    chan call
	stopOnce sync.Once
	stopped  chan struct{}
	wg       sync.WaitGroup
}

// New creates a session around the given terminal backend and starts its
// call worker. The session is not ready until Connect succeeds.
func New(api terminal.API, cfg Config, log *logger.Logger) *Session {
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = time.Second
	}

	s := &Session{
		api:     api,
		cfg:     cfg,
		log:     log,
		calls:   make(chan call, defaultQueueSize),
		stopped: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.worker()

	return s
}

func (s *Session) worker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopped:
			return
		case c := <-s.calls:
			// Cancellation applies only to queued work. Once a call
			// is picked up it runs to completion: an interrupted
			// order-send would leave the venue state ambiguous.
			if err := c.ctx.Err(); err != nil {
				c.done <- errors.Wrapf(errors.ErrCodeCallCancelled, err, "%s cancelled before dispatch", c.name)

				continue
			}

			err := c.fn(s.api)
			code, desc := s.api.LastError()
			s.log.Debug("terminal call finished",
				zap.String("op", c.name),
				zap.Int("venue_status", code),
				zap.String("venue_status_desc", desc),
				zap.Error(err),
			)
			c.done <- err
		}
	}
}

// submit queues fn and waits for its completion. It does not check
// readiness; Connect uses it directly.
func (s *Session) submit(ctx context.Context, name string, fn func(terminal.API) error) error {
	// An already-cancelled context must never reach the queue: once a call
	// is enqueued its result is awaited unconditionally, and the select
	// below picks a ready case at random.
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(errors.ErrCodeCallCancelled, err, "%s cancelled before dispatch", name)
	}

	c := call{ctx: ctx, name: name, fn: fn, done: make(chan error, 1)}

	select {
	case <-s.stopped:
		return errors.New(errors.ErrCodeSessionClosed, "session is closed")
	case <-ctx.Done():
		return errors.Wrapf(errors.ErrCodeCallCancelled, ctx.Err(), "%s cancelled before dispatch", name)
	case s.calls <- c:
	}

	// The call may already be in flight; at this point it always
	// completes, so the result is awaited unconditionally.
	return <-c.done
}

// Do runs a venue call through the session worker. It fails with
// ErrCodeNotInitialized when the session has not been connected.
func (s *Session) Do(ctx context.Context, name string, fn func(terminal.API) error) error {
	if err := s.EnsureReady(); err != nil {
		return err
	}

	return s.submit(ctx, name, fn)
}

// EnsureReady reports whether Connect has succeeded.
func (s *Session) EnsureReady() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return errors.New(errors.ErrCodeNotInitialized, "terminal not initialized, call Connect first")
	}

	return nil
}

// Connect initializes the terminal connection, retrying with incremental
// backoff, and logs in when the config carries credentials. It is a no-op
// when the session is already connected.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.ready {
		s.mu.Unlock()

		return nil
	}
	s.mu.Unlock()

	err := s.submit(ctx, "initialize", func(api terminal.API) error {
		for attempt := 0; attempt <= s.cfg.RetryCount; attempt++ {
			if attempt > 0 {
				s.log.Warn("retrying terminal initialization",
					zap.Int("attempt", attempt),
					zap.Int("retry_count", s.cfg.RetryCount),
				)
				time.Sleep(time.Duration(attempt) * s.cfg.RetryInterval)
			}

			if api.Initialize(s.cfg.Init) {
				return nil
			}
		}

		code, desc := api.LastError()

		return errors.Wrapf(errors.ErrCodeConnectFailed,
			errors.NewVenueError("initialize", code, desc),
			"terminal initialization failed after %d retries", s.cfg.RetryCount)
	})
	if err != nil {
		return err
	}

	if s.cfg.Init.Login != 0 && s.cfg.Init.Password != "" {
		err = s.submit(ctx, "login", func(api terminal.API) error {
			if api.Login(s.cfg.Init.Login, s.cfg.Init.Password, s.cfg.Init.Server, s.cfg.Init.TimeoutMS) {
				return nil
			}

			code, desc := api.LastError()
			api.Shutdown()

			return errors.Wrapf(errors.ErrCodeLoginFailed,
				errors.NewVenueError("login", code, desc),
				"login failed for account %d on %s", s.cfg.Init.Login, s.cfg.Init.Server)
		})
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()

	s.log.Info("terminal session established",
		zap.Int64("login", s.cfg.Init.Login),
		zap.String("server", s.cfg.Init.Server),
	)

	return nil
}

// Disconnect shuts the terminal connection down. It is idempotent and safe
// to call after a failed Connect.
func (s *Session) Disconnect() {
	s.mu.Lock()
	wasReady := s.ready
	s.ready = false
	s.mu.Unlock()

	if wasReady {
		_ = s.submit(context.Background(), "shutdown", func(api terminal.API) error {
			api.Shutdown()

			return nil
		})
		s.log.Info("terminal session shut down")
	}
}

// Close stops the call worker. The session cannot be reused afterwards.
func (s *Session) Close() {
	s.Disconnect()
	s.stopOnce.Do(func() { close(s.stopped) })
	s.wg.Wait()
}
