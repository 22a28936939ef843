package stats

import (
	"alcyxob/fitlog-bot/internal/clock"
	"alcyxob/fitlog-bot/internal/domain"
	"alcyxob/fitlog-bot/internal/repository"
	"alcyxob/fitlog-bot/internal/repository/memory"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	t      *testing.T
	store  *repository.Store
	engine *Engine
}

func newFixture(t *testing.T) *fixture {
	store := memory.NewStore()
	return &fixture{
		t:      t,
		store:  store,
		engine: NewEngine(store.Sessions, store.SetRecords, store.Exercises, clock.NewManual(now)),
	}
}

func (f *fixture) exercise(name string, kind domain.ExerciseKind) string {
	ex := &domain.Exercise{Slug: name, Name: name, Kind: kind}
	id, err := f.store.Exercises.Upsert(context.Background(), ex)
	require.NoError(f.t, err)
	return id
}

func (f *fixture) session(at time.Time) string {
	id, err := f.store.Sessions.Create(context.Background(), &domain.Session{UserID: "u1", CreatedAt: at})
	require.NoError(f.t, err)
	return id
}

func (f *fixture) strength(sessionID, exerciseID string, at time.Time, weight float64, reps int) {
	_, err := f.store.SetRecords.Create(context.Background(), &domain.SetRecord{
		SessionID: sessionID, ExerciseID: exerciseID, UserID: "u1", Kind: domain.KindStrength,
		Measurement: domain.Strength(weight, reps), CreatedAt: at,
	})
	require.NoError(f.t, err)
}

func (f *fixture) cardio(sessionID, exerciseID string, at time.Time, minutes int, km float64) {
	sec := minutes * 60
	m := domain.Measurement{DurationSec: &sec}
	if km > 0 {
		m.DistanceKm = &km
	}
	_, err := f.store.SetRecords.Create(context.Background(), &domain.SetRecord{
		SessionID: sessionID, ExerciseID: exerciseID, UserID: "u1", Kind: domain.KindCardio,
		Measurement: m, CreatedAt: at,
	})
	require.NoError(f.t, err)
}

func TestComputeSummaryAndRanking(t *testing.T) {
	f := newFixture(t)
	a := f.exercise("Squat", domain.KindStrength)
	b := f.exercise("Bench", domain.KindStrength)
	row := f.exercise("Rower", domain.KindCardio)
	bike := f.exercise("Bike", domain.KindCardio)

	s1 := f.session(now.Add(-48 * time.Hour))
	s2 := f.session(now.Add(-2 * time.Hour))
	for i := 0; i < 5; i++ {
		f.strength(s1, a, now.Add(-47*time.Hour), 80, 1) // 400 kg
		f.strength(s2, b, now.Add(-time.Hour), 90, 1)    // 450 kg
	}
	f.cardio(s1, row, now.Add(-46*time.Hour), 20, 4)
	f.cardio(s2, bike, now.Add(-30*time.Minute), 20, 8)

	report, err := f.engine.Compute(context.Background(), "u1", WindowWeekly)
	require.NoError(t, err)

	assert.False(t, report.Empty)
	assert.Equal(t, 2, report.Summary.Sessions)
	assert.Equal(t, 12, report.Summary.SetCount)
	assert.InDelta(t, 850, report.Summary.VolumeKg, 1e-9)
	assert.InDelta(t, 40, report.Summary.CardioMinutes, 1e-9)
	assert.InDelta(t, 12, report.Summary.CardioKm, 1e-9)

	require.Len(t, report.TopStrength, 2)
	assert.Equal(t, "Bench", report.TopStrength[0].Name, "equal set counts rank by volume")
	assert.Equal(t, "Squat", report.TopStrength[1].Name)

	require.Len(t, report.TopCardio, 2)
	assert.Equal(t, "Bike", report.TopCardio[0].Name, "equal minutes rank by distance")

	require.NotNil(t, report.Last)
	assert.Equal(t, s2, report.Last.Session.ID)
	assert.False(t, report.Last.OutsideWindow)
	assert.Equal(t, 6, report.Last.SetCount)
	assert.InDelta(t, 450, report.Last.VolumeKg, 1e-9)
	assert.InDelta(t, 8, report.Last.CardioKm, 1e-9)
}

func TestTopStrengthLimitsAndBreaksTiesByName(t *testing.T) {
	f := newFixture(t)
	s := f.session(now.Add(-time.Hour))
	for _, name := range []string{"Delta", "Alpha", "Charlie", "Bravo"} {
		f.strength(s, f.exercise(name, domain.KindStrength), now.Add(-time.Minute), 50, 10)
	}

	report, err := f.engine.Compute(context.Background(), "u1", WindowAllTime)
	require.NoError(t, err)
	require.Len(t, report.TopStrength, 3)
	assert.Equal(t, []string{"Alpha", "Bravo", "Charlie"}, []string{
		report.TopStrength[0].Name, report.TopStrength[1].Name, report.TopStrength[2].Name,
	})
}

func TestWeeklyWindowBoundary(t *testing.T) {
	f := newFixture(t)
	ex := f.exercise("Row", domain.KindStrength)
	old := f.session(now.Add(-8 * 24 * time.Hour))
	recent := f.session(now.Add(-(6*24 + 23) * time.Hour))
	f.strength(old, ex, now.Add(-8*24*time.Hour), 100, 1)
	f.strength(recent, ex, now.Add(-(6*24+23)*time.Hour), 60, 2)

	report, err := f.engine.Compute(context.Background(), "u1", WindowWeekly)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.Sessions)
	assert.InDelta(t, 120, report.Summary.VolumeKg, 1e-9)

	report, err = f.engine.Compute(context.Background(), "u1", WindowMonthly)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Summary.Sessions)
}

func TestEmptyWindowSignalsEmpty(t *testing.T) {
	f := newFixture(t)
	ex := f.exercise("Row", domain.KindStrength)
	s := f.session(now.Add(-40 * 24 * time.Hour))
	f.strength(s, ex, now.Add(-40*24*time.Hour), 100, 5)

	report, err := f.engine.Compute(context.Background(), "u1", WindowWeekly)
	require.NoError(t, err)
	assert.True(t, report.Empty)
	assert.Equal(t, Summary{}, report.Summary)
	assert.Empty(t, report.TopStrength)
	assert.Empty(t, report.TopCardio)

	require.NotNil(t, report.Last, "fallback still resolves the latest session")
	assert.True(t, report.Last.OutsideWindow)
	assert.Equal(t, s, report.Last.Session.ID)
}

func TestNoHistoryAtAll(t *testing.T) {
	f := newFixture(t)
	report, err := f.engine.Compute(context.Background(), "u1", WindowAllTime)
	require.NoError(t, err)
	assert.True(t, report.Empty)
	assert.Nil(t, report.Last)
	assert.Nil(t, report.Since)
}

func TestParseWindow(t *testing.T) {
	for in, want := range map[string]Window{"": WindowWeekly, "weekly": WindowWeekly, "Monthly": WindowMonthly, "alltime": WindowAllTime, "all": WindowAllTime} {
		got, err := ParseWindow(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseWindow("yearly")
	assert.Error(t, err)

	since := WindowWeekly.Since(now)
	require.NotNil(t, since)
	assert.Equal(t, now.Add(-7*24*time.Hour), *since)
	assert.Nil(t, WindowAllTime.Since(now))
}
