package career

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fitmova/platform/internal/app/system"
	"github.com/fitmova/platform/pkg/logger"
)

const defaultSchedule = "0 3 * * *"

// Runner re-evaluates every member on a cron schedule so that tier changes
// driven by requalification windows do not wait for the next enrollment or
// payment.
type Runner struct {
	service  *Service
	schedule string
	log      *logger.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	running bool
}

var _ system.Service = (*Runner)(nil)

// NewRunner builds a batch runner. An empty schedule falls back to a nightly
// run.
func NewRunner(service *Service, schedule string, log *logger.Logger) *Runner {
	if strings.TrimSpace(schedule) == "" {
		schedule = defaultSchedule
	}
	if log == nil {
		log = logger.NewDefault("career-runner")
	}
	return &Runner{service: service, schedule: schedule, log: log}
}

func (r *Runner) Name() string { return "career-runner" }

func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)

	c := cron.New()
	if _, err := c.AddFunc(r.schedule, func() { r.runOnce(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("register career schedule %q: %w", r.schedule, err)
	}
	c.Start()

	r.cron = c
	r.cancel = cancel
	r.running = true
	r.log.WithField("schedule", r.schedule).Info("career runner started")
	return nil
}

func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	c := r.cron
	cancel := r.cancel
	r.cron = nil
	r.cancel = nil
	r.running = false
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (r *Runner) runOnce(ctx context.Context) {
	start := time.Now()
	evaluated, err := r.service.EvaluateAll(ctx)
	if err != nil {
		r.log.WithError(err).Warn("career batch run failed")
		return
	}
	r.log.WithFields(map[string]interface{}{
		"evaluated": evaluated,
		"took":      time.Since(start).String(),
	}).Info("career batch run finished")
}
