// Package reaper closes sessions that have been idle past a threshold.
//
// Checks are opportunistic: the controller runs one before handling a user
// action, so an abandoned session is closed on the next interaction rather
// than at a wall-clock deadline. The optional Sweeper adds a periodic pass.
package reaper

import (
	"alcyxob/fitlog-bot/internal/clock"
	"alcyxob/fitlog-bot/internal/domain"
	"alcyxob/fitlog-bot/internal/events"
	"alcyxob/fitlog-bot/internal/logging"
	"alcyxob/fitlog-bot/internal/observability"
	"alcyxob/fitlog-bot/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout is the idle period after which a session is closed.
const DefaultTimeout = 2 * time.Hour

type Reaper struct {
	sessions  repository.SessionRepository
	records   repository.SetRecordRepository
	users     repository.UserRepository
	clock     clock.Clock
	timeout   time.Duration
	publisher events.Publisher
	log       logging.Logger
}

func New(sessions repository.SessionRepository, records repository.SetRecordRepository, users repository.UserRepository,
	clk clock.Clock, timeout time.Duration, publisher events.Publisher, log logging.Logger) *Reaper {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Reaper{
		sessions:  sessions,
		records:   records,
		users:     users,
		clock:     clk,
		timeout:   timeout,
		publisher: publisher,
		log:       log,
	}
}

// Timeout returns the configured idle threshold.
func (r *Reaper) Timeout() time.Duration { return r.timeout }

// Check closes the user's latest open session if it is idle. It returns the
// closed session, or nil when nothing was closed.
func (r *Reaper) Check(ctx context.Context, userID string) (*domain.Session, error) {
	session, err := r.sessions.LatestOpenByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest open session: %w", err)
	}
	return r.CheckSession(ctx, session)
}

// CheckSession applies the idle rule to one session.
func (r *Reaper) CheckSession(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	if !session.IsOpen() {
		return nil, nil
	}
	last, err := r.LastActivity(ctx, session)
	if err != nil {
		return nil, err
	}

	now := r.clock.Now().UTC()
	if now.Sub(last) < r.timeout {
		return nil, nil
	}

	err = r.sessions.MarkCompleted(ctx, session.ID, now)
	if errors.Is(err, repository.ErrNotFound) {
		// Closed concurrently.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mark session %s completed: %w", session.ID, err)
	}
	session.CompletedAt = &now
	observability.RecordSessionClosed(string(domain.CloseInactivity))
	r.log.Infof("reaper: closed session %s of user %s, idle since %s", session.ID, session.UserID, last.Format(time.RFC3339))

	r.publish(ctx, session, now)
	return session, nil
}

// LastActivity is the newest of the session creation time and its record times.
func (r *Reaper) LastActivity(ctx context.Context, session *domain.Session) (time.Time, error) {
	last := session.CreatedAt
	newest, err := r.records.LastActivity(ctx, session.ID)
	if err != nil {
		return time.Time{}, fmt.Errorf("last activity of session %s: %w", session.ID, err)
	}
	if newest != nil && newest.After(last) {
		last = *newest
	}
	return last, nil
}

func (r *Reaper) publish(ctx context.Context, session *domain.Session, at time.Time) {
	records, err := r.records.ListBySession(ctx, session.ID)
	if err != nil {
		r.log.Warnf("reaper: totals for session %s: %v", session.ID, err)
		return
	}
	totals := domain.Totals(records)
	evt := events.SessionCompleted{
		SessionID:   session.ID,
		UserID:      session.UserID,
		Reason:      string(domain.CloseInactivity),
		SetCount:    totals.SetCount,
		VolumeKg:    totals.VolumeKg,
		CompletedAt: at,
	}
	if user, err := r.users.GetByID(ctx, session.UserID); err == nil {
		evt.TelegramID = user.TelegramID
	} else {
		r.log.Warnf("reaper: owner of session %s: %v", session.ID, err)
	}
	if err := r.publisher.PublishSessionCompleted(ctx, evt); err != nil {
		r.log.Warnf("reaper: publish close of session %s: %v", session.ID, err)
	}
}
