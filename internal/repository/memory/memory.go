// Package memory provides in-process repositories for tests and local runs.
package memory

import (
	"alcyxob/fitlog-bot/internal/domain"
	"alcyxob/fitlog-bot/internal/repository"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NewStore returns a repository.Store with every repository backed by maps.
func NewStore() *repository.Store {
	return &repository.Store{
		Users:        NewUserRepository(),
		MuscleGroups: NewMuscleGroupRepository(),
		Exercises:    NewExerciseRepository(),
		Sessions:     NewSessionRepository(),
		SetRecords:   NewSetRecordRepository(),
		Close:        func(context.Context) error { return nil },
	}
}

// --- Users ---

type userRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserRepository() repository.UserRepository {
	return &userRepository{users: make(map[string]domain.User)}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.TelegramID == user.TelegramID {
			return "", repository.ErrDuplicate
		}
	}
	user.ID = uuid.NewString()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.TelegramID == telegramID {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = *user
	return nil
}

// --- Muscle groups ---

type muscleGroupRepository struct {
	mu     sync.RWMutex
	groups map[string]domain.MuscleGroup
}

func NewMuscleGroupRepository() repository.MuscleGroupRepository {
	return &muscleGroupRepository{groups: make(map[string]domain.MuscleGroup)}
}

func (r *muscleGroupRepository) Upsert(ctx context.Context, group *domain.MuscleGroup) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		if g.Slug == group.Slug {
			group.ID = g.ID
			return g.ID, nil
		}
	}
	group.ID = uuid.NewString()
	r.groups[group.ID] = *group
	return group.ID, nil
}

func (r *muscleGroupRepository) GetByID(ctx context.Context, id string) (*domain.MuscleGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (r *muscleGroupRepository) GetBySlug(ctx context.Context, slug string) (*domain.MuscleGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, g := range r.groups {
		if g.Slug == slug {
			return &g, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *muscleGroupRepository) List(ctx context.Context) ([]domain.MuscleGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.MuscleGroup, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Slug < out[j].Slug
	})
	return out, nil
}

// --- Exercises ---

type exerciseRepository struct {
	mu        sync.RWMutex
	exercises map[string]domain.Exercise
}

func NewExerciseRepository() repository.ExerciseRepository {
	return &exerciseRepository{exercises: make(map[string]domain.Exercise)}
}

func (r *exerciseRepository) Upsert(ctx context.Context, exercise *domain.Exercise) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.exercises {
		if e.Slug == exercise.Slug {
			exercise.ID = e.ID
			return e.ID, nil
		}
	}
	exercise.ID = uuid.NewString()
	r.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *exerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *exerciseRepository) ListByGroup(ctx context.Context, groupID string, kind domain.ExerciseKind) ([]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Exercise
	for _, e := range r.exercises {
		if e.GroupID == groupID && e.Kind == kind {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *exerciseRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Exercise
	for _, id := range ids {
		if e, ok := r.exercises[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- Sessions ---

type sessionRepository struct {
	mu       sync.RWMutex
	sessions []domain.Session // Insertion order
}

func NewSessionRepository() repository.SessionRepository {
	return &sessionRepository{}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.ID = uuid.NewString()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	r.sessions = append(r.sessions, *session)
	return session.ID, nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *sessionRepository) latest(userID string, openOnly bool) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *domain.Session
	for i := range r.sessions {
		s := r.sessions[i]
		if s.UserID != userID || (openOnly && !s.IsOpen()) {
			continue
		}
		// Later insertions win ties.
		if found == nil || !s.CreatedAt.Before(found.CreatedAt) {
			found = &s
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *sessionRepository) LatestOpenByUser(ctx context.Context, userID string) (*domain.Session, error) {
	return r.latest(userID, true)
}

func (r *sessionRepository) LatestByUser(ctx context.Context, userID string) (*domain.Session, error) {
	return r.latest(userID, false)
}

func (r *sessionRepository) MarkCompleted(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.sessions {
		if r.sessions[i].ID == id && r.sessions[i].IsOpen() {
			at := at
			r.sessions[i].CompletedAt = &at
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *sessionRepository) ListOpen(ctx context.Context) ([]domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Session
	for _, s := range r.sessions {
		if s.IsOpen() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *sessionRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []domain.Session
	for _, s := range r.sessions {
		if _, ok := want[s.ID]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// --- Set records ---

type setRecordRepository struct {
	mu      sync.RWMutex
	records []domain.SetRecord // Insertion order
}

func NewSetRecordRepository() repository.SetRecordRepository {
	return &setRecordRepository{}
}

func (r *setRecordRepository) Create(ctx context.Context, record *domain.SetRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.ID = uuid.NewString()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	r.records = append(r.records, *record)
	return record.ID, nil
}

func (r *setRecordRepository) LatestForExercise(ctx context.Context, sessionID, exerciseID string) (*domain.SetRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var found *domain.SetRecord
	for i := range r.records {
		rec := r.records[i]
		if rec.SessionID != sessionID || rec.ExerciseID != exerciseID {
			continue
		}
		if found == nil || !rec.CreatedAt.Before(found.CreatedAt) {
			found = &rec
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *setRecordRepository) CountForExercise(ctx context.Context, sessionID, exerciseID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, rec := range r.records {
		if rec.SessionID == sessionID && rec.ExerciseID == exerciseID {
			n++
		}
	}
	return n, nil
}

func (r *setRecordRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.SetRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.SetRecord
	for _, rec := range r.records {
		if rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *setRecordRepository) LastActivity(ctx context.Context, sessionID string) (*time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var last *time.Time
	for _, rec := range r.records {
		if rec.SessionID != sessionID {
			continue
		}
		if last == nil || rec.CreatedAt.After(*last) {
			t := rec.CreatedAt
			last = &t
		}
	}
	return last, nil
}

func (r *setRecordRepository) ListByUser(ctx context.Context, userID string, since *time.Time) ([]domain.SetRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.SetRecord
	for _, rec := range r.records {
		if rec.UserID != userID {
			continue
		}
		if since != nil && rec.CreatedAt.Before(*since) {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
