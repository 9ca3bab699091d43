package cronjob

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/printloom/mockup-backend/internal/mockups/domain"
)

// StaleLister is the repository surface the sweeper reads.
type StaleLister interface {
	ListStalePending(ctx context.Context, olderThan time.Duration) ([]*domain.Design, error)
}

// Sweeper periodically logs designs stuck in pending. Dispatch and the
// vendor call are not atomic, so a crash between them can strand a design
// in pending with no task behind it; the sweep makes that window visible
// to operators. It never repairs state on its own.
type Sweeper struct {
	designs    StaleLister
	staleAfter time.Duration
	schedule   string
	cron       *cron.Cron
}

// NewSweeper creates a new Sweeper
func NewSweeper(designs StaleLister, schedule string, staleAfter time.Duration) *Sweeper {
	return &Sweeper{
		designs:    designs,
		staleAfter: staleAfter,
		schedule:   schedule,
	}
}

// Start initializes the cron schedule
func (s *Sweeper) Start() {
	c := cron.New()

	_, err := c.AddFunc(s.schedule, func() {
		s.sweep(context.Background())
	})
	if err != nil {
		log.Printf("Failed to create sweep cron job: %v", err)
		return
	}

	log.Printf("Stale-pending sweeper started (schedule %q, threshold %s)", s.schedule, s.staleAfter)
	c.Start()
	s.cron = c
}

// Stop halts the schedule; a sweep already running finishes.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	stale, err := s.designs.ListStalePending(ctx, s.staleAfter)
	if err != nil {
		log.Printf("[sweep] failed to list stale pending designs: %v", err)
		return
	}

	if len(stale) == 0 {
		return
	}

	log.Printf("[sweep] %d design(s) pending longer than %s", len(stale), s.staleAfter)
	for _, d := range stale {
		log.Printf("[sweep] design_id=%d owner=%s pending since %s", d.ID, d.Owner, d.UpdatedAt.Format(time.RFC3339))
	}
}
