package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/fitmova/platform/internal/app/domain/ledger"
	"github.com/fitmova/platform/internal/app/storage"
	"github.com/fitmova/platform/internal/app/system"
	"github.com/fitmova/platform/pkg/logger"
)

// PayoutResolver decides whether a pending withdrawal has been paid out.
type PayoutResolver interface {
	Resolve(ctx context.Context, wd ledger.Withdrawal) (done bool, success bool, message string, retryAfter time.Duration, err error)
}

// TimeoutResolver marks pending withdrawals as failed after a timeout. It is
// the fallback when no payout provider is configured.
type TimeoutResolver struct {
	timeout time.Duration
	seen    sync.Map // withdrawal ID -> time.Time
}

func NewTimeoutResolver(timeout time.Duration) *TimeoutResolver {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &TimeoutResolver{timeout: timeout}
}

func (r *TimeoutResolver) Resolve(ctx context.Context, wd ledger.Withdrawal) (bool, bool, string, time.Duration, error) {
	if value, ok := r.seen.Load(wd.ID); ok {
		if time.Since(value.(time.Time)) >= r.timeout {
			return true, false, "timeout waiting for payout confirmation", 0, nil
		}
		return false, false, "", r.timeout / 4, nil
	}
	r.seen.Store(wd.ID, time.Now())
	return false, false, "", r.timeout / 4, nil
}

// PayoutPoller watches pending withdrawals and settles them using the
// resolver.
type PayoutPoller struct {
	store    storage.LedgerStore
	service  *Service
	resolver PayoutResolver
	interval time.Duration
	log      *logger.Logger

	mu          sync.Mutex
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	running     bool
	nextAttempt map[string]time.Time
}

var _ system.Service = (*PayoutPoller)(nil)

func NewPayoutPoller(store storage.LedgerStore, service *Service, resolver PayoutResolver, log *logger.Logger) *PayoutPoller {
	if log == nil {
		log = logger.NewDefault("payout-poller")
	}
	if resolver == nil {
		resolver = NewTimeoutResolver(2 * time.Minute)
	}
	return &PayoutPoller{
		store:       store,
		service:     service,
		resolver:    resolver,
		interval:    15 * time.Second,
		log:         log,
		nextAttempt: make(map[string]time.Time),
	}
}

func (p *PayoutPoller) Name() string { return "payout-poller" }

func (p *PayoutPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				p.tick(runCtx)
			}
		}
	}()

	p.log.Info("payout poller started")
	return nil
}

func (p *PayoutPoller) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	cancel := p.cancel
	p.running = false
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.wg.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

func (p *PayoutPoller) tick(ctx context.Context) {
	wds, err := p.store.ListPendingWithdrawals(ctx)
	if err != nil {
		p.log.WithError(err).Warn("list pending withdrawals failed")
		return
	}

	now := time.Now()
	for _, wd := range wds {
		if !p.shouldAttempt(wd.ID, now) {
			continue
		}

		done, success, message, retryAfter, err := p.resolver.Resolve(ctx, wd)
		if err != nil {
			p.log.WithError(err).Warnf("resolver error for withdrawal %s", wd.ID)
			p.scheduleNext(wd.ID, retryAfter)
			continue
		}

		if !done {
			p.scheduleNext(wd.ID, retryAfter)
			continue
		}

		if p.service == nil {
			p.log.Warnf("no ledger service attached; cannot settle %s", wd.ID)
			continue
		}

		if _, err := p.service.CompleteWithdrawal(ctx, wd.ID, success, message); err != nil {
			p.log.WithError(err).Warnf("complete withdrawal %s failed", wd.ID)
			p.scheduleNext(wd.ID, retryAfter)
			continue
		}
		p.log.Infof("withdrawal %s settled (success=%t)", wd.ID, success)
		p.clearSchedule(wd.ID)
	}
}

func (p *PayoutPoller) shouldAttempt(id string, now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	next, ok := p.nextAttempt[id]
	if !ok || now.After(next) {
		return true
	}
	return false
}

func (p *PayoutPoller) scheduleNext(id string, after time.Duration) {
	if after <= 0 {
		after = p.interval
	}
	p.mu.Lock()
	p.nextAttempt[id] = time.Now().Add(after)
	p.mu.Unlock()
}

func (p *PayoutPoller) clearSchedule(id string) {
	p.mu.Lock()
	delete(p.nextAttempt, id)
	p.mu.Unlock()
}
