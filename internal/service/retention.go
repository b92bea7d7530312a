package service

import (
	"context"
	"time"

	"chief_monitor/internal/logger"
	"chief_monitor/internal/repository"
)

const DefaultRetentionDays = 30

// Pruner deletes telemetry older than the retention horizon. Checks and alerts are never touched.
type Pruner struct {
	events repository.EventRepo
	days   int
	log    *logger.Logger
	now    func() time.Time
}

func NewPruner(events repository.EventRepo, retentionDays int, log *logger.Logger) *Pruner {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return &Pruner{events: events, days: retentionDays, log: orNop(log), now: time.Now}
}

// PruneTelemetry removes events with eventAt before now minus the horizon and returns the count.
func (p *Pruner) PruneTelemetry(ctx context.Context) (int64, error) {
	cutoff := p.now().UTC().Add(-time.Duration(p.days) * 24 * time.Hour)
	n, err := p.events.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		p.log.Infow("telemetry_pruned", "removed", n, "cutoff", cutoff)
	}
	return n, nil
}
