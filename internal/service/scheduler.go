package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chief_monitor/internal/logger"
)

// Scheduler runs named background tasks on fixed intervals.
// Stop via context cancellation in main() and then call Wait.
type Scheduler struct {
	log *logger.Logger
	wg  sync.WaitGroup
}

func NewScheduler(log *logger.Logger) *Scheduler {
	return &Scheduler{log: orNop(log)}
}

// Every starts a loop calling fn each interval until ctx is canceled. fn runs on the
// loop goroutine, so a slow run delays the next tick instead of overlapping it.
// Errors and panics are logged and never stop the loop.
func (s *Scheduler) Every(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := s.runOnce(ctx, fn); err != nil && ctx.Err() == nil {
					s.log.Errorw(name+"_sweep_failed", "err", err)
				}
			}
		}
	}()
}

func (s *Scheduler) runOnce(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

// Wait blocks until every loop started with Every has returned.
func (s *Scheduler) Wait() { s.wg.Wait() }
