package shell

import (
	"context"
	"fmt"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"

	"github.com/seenimoa/newsdesk/pkg/models"
)

// EventKind tags what a background task produced.
type EventKind int

const (
	EventResult EventKind = iota + 1
	EventTape
)

// Event is a background result handed to the render loop.
type Event struct {
	Kind   EventKind
	Input  string
	Output Output
	Tiles  []models.MarketTile
}

// Scheduler runs background work and delivers every result on one
// channel. Only the render loop reads that channel.
type Scheduler struct {
	cron   *cron.Cron
	events chan Event
}

// NewScheduler creates a Scheduler whose event channel holds up to
// buffer undelivered events.
func NewScheduler(buffer int) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		events: make(chan Event, buffer),
	}
}

// Events is the channel drained by the render loop.
func (s *Scheduler) Events() <-chan Event { return s.events }

// Post delivers ev unless ctx ends first.
func (s *Scheduler) Post(ctx context.Context, ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Go runs fn on its own goroutine and posts the event it returns.
func (s *Scheduler) Go(ctx context.Context, fn func(context.Context) Event) {
	go func() {
		ev := fn(ctx)
		if ctx.Err() != nil {
			return
		}
		s.Post(ctx, ev)
	}()
}

// Every registers fn on a cron schedule, e.g. "@every 1m" or "*/5 * * * *".
// Each run posts the event fn returns.
func (s *Scheduler) Every(ctx context.Context, spec string, fn func(context.Context) Event) error {
	if _, err := s.cron.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		s.Post(ctx, fn(ctx))
	}); err != nil {
		return fmt.Errorf("register schedule %q: %w", spec, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Debug().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Debug().Msg("scheduler stopped")
}
