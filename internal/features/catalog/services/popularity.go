package services

import (
	"context"
	"sync"
	"time"

	"reelhouse/internal/core"
	"reelhouse/internal/metrics"
)

// PopularityRefresher periodically marks the most-viewed videos popular
type PopularityRefresher struct {
	catalog  *CatalogService
	logger   *core.Logger
	interval time.Duration
	count    int

	mu       sync.Mutex
	cancel   context.CancelFunc
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewPopularityRefresher creates a refresher that keeps count videos popular
func NewPopularityRefresher(catalog *CatalogService, logger *core.Logger, interval time.Duration, count int) *PopularityRefresher {
	return &PopularityRefresher{
		catalog:  catalog,
		logger:   logger,
		interval: interval,
		count:    count,
	}
}

// Start begins the refresh loop. It is a no-op when the interval is zero or
// the refresher is already running.
func (p *PopularityRefresher) Start(ctx context.Context) error {
	if p.interval <= 0 {
		p.logger.Info("Popularity refresher disabled")
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopChan != nil {
		return nil
	}

	// The loop outlives the Init context; Stop ends it.
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	p.stopChan = make(chan struct{})

	p.logger.Info("Starting popularity refresher", "interval", p.interval, "count", p.count)
	p.wg.Add(1)
	go p.refreshLoop(loopCtx, p.stopChan)
	return nil
}

// Stop ends the refresh loop and waits for an in-flight run to finish
func (p *PopularityRefresher) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopChan == nil {
		p.mu.Unlock()
		return nil
	}
	close(p.stopChan)
	p.cancel()
	p.stopChan = nil
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("Popularity refresher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *PopularityRefresher) refreshLoop(ctx context.Context, stop <-chan struct{}) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Seeded flags stand until the first tick
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			p.RefreshNow(ctx)
		}
	}
}

// RefreshNow runs one refresh synchronously
func (p *PopularityRefresher) RefreshNow(ctx context.Context) {
	start := time.Now()
	ids, err := p.catalog.RefreshPopular(ctx, p.count)
	metrics.RecordPopularityRefresh(time.Since(start), err)
	if err != nil {
		p.logger.Error("Failed to refresh popular videos", "error", err)
		return
	}
	p.logger.Debug("Refreshed popular videos", "ids", ids)
}
