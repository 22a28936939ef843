package repository

import (
	"alcyxob/fitlog-bot/internal/domain"
	"context"
	"time"
)

// Error constants for the repository layer, shared by every backend.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDuplicate    = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (string, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// MuscleGroupRepository reads and seeds muscle groups.
type MuscleGroupRepository interface {
	// Upsert inserts the group when no group with its slug exists and returns the stored ID.
	Upsert(ctx context.Context, group *domain.MuscleGroup) (string, error)
	GetByID(ctx context.Context, id string) (*domain.MuscleGroup, error)
	GetBySlug(ctx context.Context, slug string) (*domain.MuscleGroup, error)
	List(ctx context.Context) ([]domain.MuscleGroup, error)
}

// ExerciseRepository reads and seeds the exercise catalog.
type ExerciseRepository interface {
	Upsert(ctx context.Context, exercise *domain.Exercise) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Exercise, error)
	// ListByGroup returns exercises of the given kind filed under the group, ordered by position.
	ListByGroup(ctx context.Context, groupID string, kind domain.ExerciseKind) ([]domain.Exercise, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Exercise, error)
}

// SessionRepository defines the interface for logging sessions. There is no delete path.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// LatestOpenByUser returns the most recently created session without a completion time.
	LatestOpenByUser(ctx context.Context, userID string) (*domain.Session, error)
	// LatestByUser returns the most recently created session regardless of state.
	LatestByUser(ctx context.Context, userID string) (*domain.Session, error)
	// MarkCompleted sets completedAt only if the session is still open.
	// It returns ErrNotFound when no open session matched.
	MarkCompleted(ctx context.Context, id string, at time.Time) error
	ListOpen(ctx context.Context) ([]domain.Session, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Session, error)
}

// SetRecordRepository defines the interface for logged sets. Records are append-only.
type SetRecordRepository interface {
	Create(ctx context.Context, record *domain.SetRecord) (string, error)
	// LatestForExercise returns the newest record for (session, exercise).
	LatestForExercise(ctx context.Context, sessionID, exerciseID string) (*domain.SetRecord, error)
	CountForExercise(ctx context.Context, sessionID, exerciseID string) (int, error)
	ListBySession(ctx context.Context, sessionID string) ([]domain.SetRecord, error)
	// LastActivity returns the newest record creation time in the session, or nil.
	LastActivity(ctx context.Context, sessionID string) (*time.Time, error)
	// ListByUser returns the user's records created at or after since (all when nil), oldest first.
	ListByUser(ctx context.Context, userID string, since *time.Time) ([]domain.SetRecord, error)
}

// Store bundles every repository of one backend.
type Store struct {
	Users        UserRepository
	MuscleGroups MuscleGroupRepository
	Exercises    ExerciseRepository
	Sessions     SessionRepository
	SetRecords   SetRecordRepository

	// Close releases the backend connection.
	Close func(ctx context.Context) error
}
