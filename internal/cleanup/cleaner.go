package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/saty-git24/TALENTFLOW-sub000/internal/ats"
)

// Cleaner periodically closes assessment attempts that ran past their deadline
type Cleaner struct {
	manager  ats.Manager
	interval time.Duration
}

// NewCleaner creates a new expiry worker
func NewCleaner(manager ats.Manager, interval time.Duration) *Cleaner {
	if interval <= 0 {
		interval = time.Minute
	}

	return &Cleaner{
		manager:  manager,
		interval: interval,
	}
}

// Start begins the expiry worker in a goroutine
func (c *Cleaner) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Cleaner) run(ctx context.Context) {
	slog.Info("attempt expiry worker started", "interval", c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Run immediately on start
	c.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("attempt expiry worker stopped")
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *Cleaner) sweep(ctx context.Context) {
	slog.Debug("running attempt expiry sweep")

	n, err := c.manager.ExpireOverdueAttempts(ctx)
	if err != nil {
		slog.Error("attempt expiry sweep failed", "error", err)
		return
	}

	if n > 0 {
		slog.Info("expired overdue attempts", "count", n)
	}
}
