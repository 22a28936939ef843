// Package stats computes windowed summaries over logged set records.
package stats

import (
	"alcyxob/fitlog-bot/internal/clock"
	"alcyxob/fitlog-bot/internal/domain"
	"alcyxob/fitlog-bot/internal/repository"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

const topN = 3

// Summary holds the totals of one window.
type Summary struct {
	Sessions      int     `json:"sessions"`
	SetCount      int     `json:"setCount"`
	VolumeKg      float64 `json:"volumeKg"`
	CardioMinutes float64 `json:"cardioMinutes"`
	CardioKm      float64 `json:"cardioKm"`
}

// StrengthRank is one row of the strength top list.
type StrengthRank struct {
	ExerciseID string  `json:"exerciseId"`
	Name       string  `json:"name"`
	Sets       int     `json:"sets"`
	VolumeKg   float64 `json:"volumeKg"`
}

// CardioRank is one row of the cardio top list.
type CardioRank struct {
	ExerciseID string  `json:"exerciseId"`
	Name       string  `json:"name"`
	Minutes    float64 `json:"minutes"`
	Km         float64 `json:"km"`
}

// SessionSummary describes a single session.
type SessionSummary struct {
	Session       domain.Session `json:"session"`
	OutsideWindow bool           `json:"outsideWindow"`
	SetCount      int            `json:"setCount"`
	VolumeKg      float64        `json:"volumeKg"`
	CardioMinutes float64        `json:"cardioMinutes"`
	CardioKm      float64        `json:"cardioKm"`
}

// Report is the full result for a user and window. Empty is set when the
// window holds no sessions, no volume and no cardio. Last then holds the
// outside-window fallback; presentation shows "no data" and drops it.
type Report struct {
	Window      Window          `json:"window"`
	Since       *time.Time      `json:"since,omitempty"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Empty       bool            `json:"empty"`
	Summary     Summary         `json:"summary"`
	TopStrength []StrengthRank  `json:"topStrength"`
	TopCardio   []CardioRank    `json:"topCardio"`
	Last        *SessionSummary `json:"last,omitempty"`
}

// Engine is read-only: it never writes to the repositories.
type Engine struct {
	sessions  repository.SessionRepository
	records   repository.SetRecordRepository
	exercises repository.ExerciseRepository
	clock     clock.Clock
}

func NewEngine(sessions repository.SessionRepository, records repository.SetRecordRepository,
	exercises repository.ExerciseRepository, clk clock.Clock) *Engine {
	return &Engine{sessions: sessions, records: records, exercises: exercises, clock: clk}
}

// Compute aggregates the user's records inside the window.
func (e *Engine) Compute(ctx context.Context, userID string, window Window) (*Report, error) {
	now := e.clock.Now().UTC()
	since := window.Since(now)

	records, err := e.records.ListByUser(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	names, err := e.exerciseNames(ctx, records)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Window:      window,
		Since:       since,
		GeneratedAt: now,
		Summary:     summarize(records),
		TopStrength: rankStrength(records, names),
		TopCardio:   rankCardio(records, names),
	}
	report.Empty = report.Summary.Sessions == 0 && report.Summary.VolumeKg == 0 && report.Summary.CardioMinutes == 0

	report.Last, err = e.lastSession(ctx, userID, records)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func summarize(records []domain.SetRecord) Summary {
	var s Summary
	sessions := make(map[string]struct{})
	for _, r := range records {
		sessions[r.SessionID] = struct{}{}
		s.SetCount++
		switch r.Kind {
		case domain.KindStrength:
			s.VolumeKg += r.Volume()
		case domain.KindCardio:
			s.CardioMinutes += r.Minutes()
			s.CardioKm += r.Km()
		}
	}
	s.Sessions = len(sessions)
	return s
}

func rankStrength(records []domain.SetRecord, names map[string]string) []StrengthRank {
	byID := make(map[string]*StrengthRank)
	for _, r := range records {
		if r.Kind != domain.KindStrength {
			continue
		}
		row, ok := byID[r.ExerciseID]
		if !ok {
			row = &StrengthRank{ExerciseID: r.ExerciseID, Name: names[r.ExerciseID]}
			byID[r.ExerciseID] = row
		}
		row.Sets++
		row.VolumeKg += r.Volume()
	}

	rows := make([]StrengthRank, 0, len(byID))
	for _, row := range byID {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Sets != b.Sets {
			return a.Sets > b.Sets
		}
		if a.VolumeKg != b.VolumeKg {
			return a.VolumeKg > b.VolumeKg
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ExerciseID < b.ExerciseID
	})
	if len(rows) > topN {
		rows = rows[:topN]
	}
	return rows
}

func rankCardio(records []domain.SetRecord, names map[string]string) []CardioRank {
	byID := make(map[string]*CardioRank)
	for _, r := range records {
		if r.Kind != domain.KindCardio {
			continue
		}
		row, ok := byID[r.ExerciseID]
		if !ok {
			row = &CardioRank{ExerciseID: r.ExerciseID, Name: names[r.ExerciseID]}
			byID[r.ExerciseID] = row
		}
		row.Minutes += r.Minutes()
		row.Km += r.Km()
	}

	rows := make([]CardioRank, 0, len(byID))
	for _, row := range byID {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Minutes != b.Minutes {
			return a.Minutes > b.Minutes
		}
		if a.Km != b.Km {
			return a.Km > b.Km
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ExerciseID < b.ExerciseID
	})
	if len(rows) > topN {
		rows = rows[:topN]
	}
	return rows
}

// lastSession picks the newest session touched in-window, falling back to the
// newest session with any record at all.
func (e *Engine) lastSession(ctx context.Context, userID string, inWindow []domain.SetRecord) (*SessionSummary, error) {
	candidates := inWindow
	outside := false
	if len(candidates) == 0 {
		all, err := e.records.ListByUser(ctx, userID, nil)
		if err != nil {
			return nil, fmt.Errorf("list records: %w", err)
		}
		candidates = all
		outside = true
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]string, 0)
	seen := make(map[string]struct{})
	for _, r := range candidates {
		if _, ok := seen[r.SessionID]; !ok {
			seen[r.SessionID] = struct{}{}
			ids = append(ids, r.SessionID)
		}
	}
	sessions, err := e.sessions.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	latest := sessions[0]
	for _, s := range sessions[1:] {
		if s.CreatedAt.After(latest.CreatedAt) || (s.CreatedAt.Equal(latest.CreatedAt) && s.ID > latest.ID) {
			latest = s
		}
	}

	records, err := e.records.ListBySession(ctx, latest.ID)
	if err != nil {
		return nil, fmt.Errorf("list session records: %w", err)
	}
	sum := summarize(records)
	return &SessionSummary{
		Session:       latest,
		OutsideWindow: outside,
		SetCount:      sum.SetCount,
		VolumeKg:      sum.VolumeKg,
		CardioMinutes: sum.CardioMinutes,
		CardioKm:      sum.CardioKm,
	}, nil
}

func (e *Engine) exerciseNames(ctx context.Context, records []domain.SetRecord) (map[string]string, error) {
	ids := make([]string, 0)
	seen := make(map[string]struct{})
	for _, r := range records {
		if _, ok := seen[r.ExerciseID]; !ok {
			seen[r.ExerciseID] = struct{}{}
			ids = append(ids, r.ExerciseID)
		}
	}
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	exercises, err := e.exercises.ListByIDs(ctx, ids)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	for _, ex := range exercises {
		names[ex.ID] = ex.Name
	}
	return names, nil
}
