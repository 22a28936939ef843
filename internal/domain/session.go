package domain

import "time"

// Session is a bounded logging unit. It is open until CompletedAt is set.
type Session struct {
	ID          string     `bson:"_id,omitempty" json:"id"`
	UserID      string     `bson:"userId" json:"userId"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// IsOpen reports whether the session has not been completed.
func (s *Session) IsOpen() bool {
	return s.CompletedAt == nil
}

// SetRecord is one logged measurement. Immutable once created.
type SetRecord struct {
	ID          string       `bson:"_id,omitempty" json:"id"`
	SessionID   string       `bson:"sessionId" json:"sessionId"`
	ExerciseID  string       `bson:"exerciseId" json:"exerciseId"`
	UserID      string       `bson:"userId" json:"userId"` // Denormalized for windowed queries
	Kind        ExerciseKind `bson:"kind" json:"kind"`
	Measurement `bson:",inline"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// CloseReason explains why a session was completed.
type CloseReason string

const (
	CloseFinished   CloseReason = "finished"
	CloseInactivity CloseReason = "inactivity"
	// CloseSuperseded marks an open session left behind by a new start.
	CloseSuperseded CloseReason = "superseded"
)

// SessionTotals is the summary shown when a session ends.
type SessionTotals struct {
	SetCount int     `json:"setCount"`
	VolumeKg float64 `json:"volumeKg"`
}

// Totals sums set count and strength volume over records.
func Totals(records []SetRecord) SessionTotals {
	var t SessionTotals
	for _, r := range records {
		t.SetCount++
		if r.Kind == KindStrength {
			t.VolumeKg += r.Volume()
		}
	}
	return t
}
