package reaper

import (
	"alcyxob/fitlog-bot/internal/logging"
	"alcyxob/fitlog-bot/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"
)

// Sweeper runs the idle rule over every open session on a fixed interval.
type Sweeper struct {
	reaper   *Reaper
	sessions repository.SessionRepository
	interval time.Duration
	log      logging.Logger
	done     chan struct{}
}

func NewSweeper(r *Reaper, sessions repository.SessionRepository, interval time.Duration, log logging.Logger) *Sweeper {
	return &Sweeper{
		reaper:   r,
		sessions: sessions,
		interval: interval,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start launches the polling loop. It should be called in a goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer func() {
		ticker.Stop()
		close(s.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if n, err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Errorf("sweeper: %v", err)
		} else if n > 0 {
			s.log.Infof("sweeper: closed %d idle sessions", n)
		}
	}
}

// Wait blocks until Start has returned.
func (s *Sweeper) Wait() {
	<-s.done
}

// RunOnce checks every open session and returns how many were closed.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	open, err := s.sessions.ListOpen(ctx)
	if err != nil {
		return 0, fmt.Errorf("list open sessions: %w", err)
	}
	closed := 0
	for i := range open {
		if err := ctx.Err(); err != nil {
			return closed, err
		}
		done, err := s.reaper.CheckSession(ctx, &open[i])
		if err != nil {
			s.log.Warnf("sweeper: session %s: %v", open[i].ID, err)
			continue
		}
		if done != nil {
			closed++
		}
	}
	return closed, nil
}
