package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/deusflow/newsmin/internal/logger"
)

// Pacer spaces out calls to an AI provider and keeps a per-run usage count.
type Pacer struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	provider string
	used     int
	waited   time.Duration
}

// NewPacer allows one call immediately and then one per delay. A delay of
// zero disables pacing.
func NewPacer(provider string, delay time.Duration) *Pacer {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Pacer{
		limiter:  rate.NewLimiter(limit, 1),
		provider: provider,
	}
}

// Wait blocks until the next call may start or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	start := time.Now()
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s pacer: %w", p.provider, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.used++
	p.waited += time.Since(start)
	return nil
}

// Used returns how many calls have been let through.
func (p *Pacer) Used() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.used
}

// LogStats writes the usage summary for this run.
func (p *Pacer) LogStats() {
	p.mu.Lock()
	defer p.mu.Unlock()
	logger.Info("AI usage", "provider", p.provider, "calls", p.used, "waited", p.waited.Round(time.Millisecond))
}
