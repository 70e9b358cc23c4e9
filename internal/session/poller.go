package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/edinar-labs/flexible-staking/internal/core/config"
	"github.com/edinar-labs/flexible-staking/internal/utils/contextutil"
	"github.com/edinar-labs/flexible-staking/pkg/logger"
)

// UserInfoFetcher is the read the poller repeats.
type UserInfoFetcher interface {
	FetchUserInfo(ctx context.Context) (UserInfo, error)
}

// Poller refreshes user info on a fixed interval while a session is active.
type Poller struct {
	fetcher  UserInfoFetcher
	interval time.Duration

	mu       sync.Mutex
	started  bool
	stopChan chan struct{}
	done     chan struct{}
}

func NewPoller(fetcher UserInfoFetcher, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = config.DefaultPollInterval
	}
	return &Poller{
		fetcher:  fetcher,
		interval: interval,
	}
}

func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Start fetches once immediately, then on every tick until Stop or ctx is done.
// It refuses to start for a session that is not connected.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return nil
	}

	log := logger.WithComponent("poller")

	if _, err := p.fetch(ctx); errors.Is(err, ErrNotConnected) {
		return err
	}

	p.stopChan = make(chan struct{})
	p.done = make(chan struct{})
	p.started = true

	log.Info().Dur("interval", p.interval).Msg("Polling user info")

	go p.loop(ctx, p.stopChan, p.done)
	return nil
}

func (p *Poller) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// failures are logged by the session and the last values kept
			_, _ = p.fetch(ctx)
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) fetch(ctx context.Context) (UserInfo, error) {
	fctx, cancel := contextutil.WithShortTimeout(ctx)
	defer cancel()
	return p.fetcher.FetchUserInfo(fctx)
}

// Stop clears the timer and waits for the loop to exit. Stopping twice is safe.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	close(p.stopChan)
	done := p.done
	p.mu.Unlock()

	<-done
	log := logger.WithComponent("poller")
	log.Debug().Msg("Polling stopped")
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}
