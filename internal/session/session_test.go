package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rxtech-lab/mt5-bridge/internal/logger"
	"github.com/rxtech-lab/mt5-bridge/internal/terminal"
	"github.com/rxtech-lab/mt5-bridge/internal/terminal/sim"
	"github.com/rxtech-lab/mt5-bridge/internal/types"
	"github.com/rxtech-lab/mt5-bridge/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SessionTestSuite struct {
	suite.Suite
	term *sim.Terminal
	sess *Session
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionTestSuite))
}

func (s *SessionTestSuite) SetupTest() {
	s.term = sim.New(sim.DefaultConfig())
	s.sess = New(s.term, Config{RetryInterval: time.Millisecond}, logger.NewNopLogger())
}

func (s *SessionTestSuite) TearDownTest() {
	s.sess.Close()
}

func (s *SessionTestSuite) TestDoBeforeConnect() {
	err := s.sess.Do(context.Background(), "account_info", func(api terminal.API) error {
		s.Fail("call must not be dispatched before Connect")

		return nil
	})
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeNotInitialized))
}

func (s *SessionTestSuite) TestConnectAndDo() {
	s.Require().NoError(s.sess.Connect(context.Background()))
	s.NoError(s.sess.EnsureReady())

	var account *types.Account
	err := s.sess.Do(context.Background(), "account_info", func(api terminal.API) error {
		account = api.AccountInfo()

		return nil
	})
	s.Require().NoError(err)
	s.Require().NotNil(account)
	s.Equal(100000.0, account.Balance)
}

func (s *SessionTestSuite) TestConnectIsIdempotent() {
	s.Require().NoError(s.sess.Connect(context.Background()))
	s.Require().NoError(s.sess.Connect(context.Background()))
}

func (s *SessionTestSuite) TestConnectRetriesInitialize() {
	s.sess.cfg.RetryCount = 2
	s.term.FailNext("initialize", types.ResFail, "IPC initialize failed")

	s.Require().NoError(s.sess.Connect(context.Background()))
	s.NoError(s.sess.EnsureReady())
}

func (s *SessionTestSuite) TestConnectFailure() {
	s.term.FailNext("initialize", types.ResFail, "IPC initialize failed")

	err := s.sess.Connect(context.Background())
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeConnectFailed))

	var venueErr *errors.VenueError
	s.Require().True(errors.As(err, &venueErr))
	s.Equal(types.ResFail, venueErr.VenueCode)

	s.Error(s.sess.EnsureReady())
}

func (s *SessionTestSuite) TestLoginFailure() {
	s.sess.cfg.Init = terminal.InitParams{Login: 123456, Password: "wrong", Server: "Sim-Server"}
	s.term.FailNext("login", types.ResAuthFailed, "Authorization failed")

	err := s.sess.Connect(context.Background())
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeLoginFailed))
	s.Error(s.sess.EnsureReady())
}

func (s *SessionTestSuite) TestCallsRunInSubmissionOrder() {
	s.Require().NoError(s.sess.Connect(context.Background()))

	release := make(chan struct{})
	started := make(chan struct{})

	var mu sync.Mutex
	var order []int

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.sess.Do(context.Background(), "slow", func(api terminal.API) error {
			close(started)
			<-release
			mu.Lock()
			order = append(order, 1)
			mu.Unlock()

			return nil
		})
	}()

	// Queue two more behind the in-flight call, in a known order.
	<-started
	for i := 2; i <= 3; i++ {
		i := i
		wg.Add(1)
		queued := make(chan struct{})
		go func() {
			defer wg.Done()
			close(queued)
			_ = s.sess.Do(context.Background(), "queued", func(api terminal.API) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()

				return nil
			})
		}()
		<-queued
		time.Sleep(10 * time.Millisecond)
	}

	close(release)
	wg.Wait()

	s.Equal([]int{1, 2, 3}, order)
}

func (s *SessionTestSuite) TestQueuedCallCancellation() {
	s.Require().NoError(s.sess.Connect(context.Background()))

	release := make(chan struct{})
	started := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.sess.Do(context.Background(), "slow", func(api terminal.API) error {
			close(started)
			<-release

			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.sess.Do(ctx, "cancelled", func(api terminal.API) error {
		s.Fail("cancelled call must not be dispatched")

		return nil
	})
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeCallCancelled))

	close(release)
	wg.Wait()
}

func (s *SessionTestSuite) TestPreCancelledCallNeverBlocksBehindInFlightCall() {
	s.Require().NoError(s.sess.Connect(context.Background()))

	release := make(chan struct{})
	started := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.sess.Do(context.Background(), "slow", func(api terminal.API) error {
			close(started)
			<-release

			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The worker is parked in the slow call, so any enqueued call would
	// wait behind it. Repeated submissions flush out an enqueue that slips
	// past the cancellation check; each one must fail fast instead.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			err := s.sess.Do(ctx, "cancelled", func(api terminal.API) error {
				s.Fail("cancelled call must not be dispatched")

				return nil
			})
			s.True(errors.HasCode(err, errors.ErrCodeCallCancelled))
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.FailNow("cancelled submissions blocked behind the in-flight call")
	}

	close(release)
	wg.Wait()
}

func (s *SessionTestSuite) TestInFlightCallIsNotCancelled() {
	s.Require().NoError(s.sess.Connect(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())

	ran := false
	err := s.sess.Do(ctx, "in_flight", func(api terminal.API) error {
		// Cancelling mid-call must not interrupt it.
		cancel()
		time.Sleep(5 * time.Millisecond)
		ran = true

		return nil
	})
	s.NoError(err)
	s.True(ran)
}

func (s *SessionTestSuite) TestDisconnectIsIdempotent() {
	s.Require().NoError(s.sess.Connect(context.Background()))

	s.sess.Disconnect()
	s.sess.Disconnect()

	err := s.sess.Do(context.Background(), "account_info", func(api terminal.API) error { return nil })
	s.True(errors.HasCode(err, errors.ErrCodeNotInitialized))
}

func (s *SessionTestSuite) TestDisconnectAfterFailedConnect() {
	s.term.FailNext("initialize", types.ResFail, "IPC initialize failed")
	s.Require().Error(s.sess.Connect(context.Background()))

	s.sess.Disconnect()
}

func (s *SessionTestSuite) TestSubmitAfterClose() {
	s.Require().NoError(s.sess.Connect(context.Background()))
	s.sess.Close()

	err := s.sess.submit(context.Background(), "late", func(api terminal.API) error { return nil })
	s.True(errors.HasCode(err, errors.ErrCodeSessionClosed))
}
