package reaper

import (
	"alcyxob/fitlog-bot/internal/clock"
	"alcyxob/fitlog-bot/internal/domain"
	"alcyxob/fitlog-bot/internal/events"
	"alcyxob/fitlog-bot/internal/logging"
	"alcyxob/fitlog-bot/internal/repository"
	"alcyxob/fitlog-bot/internal/repository/memory"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	events []events.SessionCompleted
}

func (p *recordingPublisher) PublishSessionCompleted(_ context.Context, evt events.SessionCompleted) error {
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func setup(t *testing.T) (*repository.Store, *clock.Manual, *Reaper, *recordingPublisher) {
	t.Helper()
	store := memory.NewStore()
	clk := clock.NewManual(t0)
	pub := &recordingPublisher{}
	return store, clk, New(store.Sessions, store.SetRecords, store.Users, clk, 2*time.Hour, pub, logging.NewNop()), pub
}

func openSession(t *testing.T, store *repository.Store, lastRecord time.Duration) string {
	t.Helper()
	ctx := context.Background()
	id, err := store.Sessions.Create(ctx, &domain.Session{UserID: "u1", CreatedAt: t0})
	require.NoError(t, err)
	if lastRecord > 0 {
		_, err = store.SetRecords.Create(ctx, &domain.SetRecord{
			SessionID: id, ExerciseID: "e1", UserID: "u1", Kind: domain.KindStrength,
			Measurement: domain.Strength(60, 10), CreatedAt: t0.Add(lastRecord),
		})
		require.NoError(t, err)
	}
	return id
}

func TestCheckUsesLastRecordTime(t *testing.T) {
	store, clk, r, _ := setup(t)
	ctx := context.Background()
	id := openSession(t, store, 10*time.Minute)

	clk.Set(t0.Add(time.Hour + 59*time.Minute))
	closed, err := r.Check(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, closed)

	clk.Set(t0.Add(2*time.Hour + 11*time.Minute))
	closed, err = r.Check(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, closed)
	assert.Equal(t, id, closed.ID)

	s, err := store.Sessions.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, s.CompletedAt)
	assert.Equal(t, clk.Now(), *s.CompletedAt)
}

func TestCheckWithoutRecordsUsesCreation(t *testing.T) {
	store, clk, r, _ := setup(t)
	openSession(t, store, 0)

	clk.Set(t0.Add(2 * time.Hour))
	closed, err := r.Check(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, closed, "exactly the threshold closes")
}

func TestCheckIsIdempotent(t *testing.T) {
	store, clk, r, pub := setup(t)
	ctx := context.Background()
	id := openSession(t, store, 10*time.Minute)
	clk.Set(t0.Add(5 * time.Hour))

	first, err := r.Check(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, first)
	completedAt := *first.CompletedAt

	clk.Advance(time.Hour)
	second, err := r.Check(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, second)

	s, err := store.Sessions.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, completedAt, *s.CompletedAt, "completion time is not overwritten")

	again, err := r.CheckSession(ctx, s)
	require.NoError(t, err)
	assert.Nil(t, again)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "inactivity", pub.events[0].Reason)
	assert.Equal(t, 1, pub.events[0].SetCount)
}

func TestCheckEventCarriesTelegramID(t *testing.T) {
	store, clk, r, pub := setup(t)
	ctx := context.Background()
	userID, err := store.Users.Create(ctx, &domain.User{TelegramID: 777})
	require.NoError(t, err)
	_, err = store.Sessions.Create(ctx, &domain.Session{UserID: userID, CreatedAt: t0})
	require.NoError(t, err)

	clk.Set(t0.Add(3 * time.Hour))
	closed, err := r.Check(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, closed)

	require.Len(t, pub.events, 1)
	assert.Equal(t, int64(777), pub.events[0].TelegramID)
	assert.Equal(t, userID, pub.events[0].UserID)
}

func TestCheckNoOpenSession(t *testing.T) {
	_, _, r, _ := setup(t)
	closed, err := r.Check(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, closed)
}

func TestSweeperRunOnce(t *testing.T) {
	store, clk, r, _ := setup(t)
	ctx := context.Background()
	openSession(t, store, 10*time.Minute)
	_, err := store.Sessions.Create(ctx, &domain.Session{UserID: "u2", CreatedAt: t0.Add(3 * time.Hour)})
	require.NoError(t, err)

	clk.Set(t0.Add(4 * time.Hour))
	sweeper := NewSweeper(r, store.Sessions, time.Minute, logging.NewNop())
	n, err := sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	open, err := store.Sessions.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "u2", open[0].UserID)
}

func TestSweeperStopsOnCancel(t *testing.T) {
	store, _, r, _ := setup(t)
	sweeper := NewSweeper(r, store.Sessions, time.Millisecond, logging.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go sweeper.Start(ctx)
	cancel()
	sweeper.Wait()
}
