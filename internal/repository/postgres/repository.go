package postgres

import (
	"alcyxob/fitlog-bot/internal/domain"
	"alcyxob/fitlog-bot/internal/repository"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// --- Users ---

type userRepository struct{ *Repository }

const userColumns = `id, telegram_id, name, gender, weight_kg, height_cm, age, goal, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) (string, error) {
	user.ID = uuid.NewString()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		user.ID, user.TelegramID, user.Name, string(user.Gender), user.WeightKg, user.HeightCm, user.Age,
		string(user.Goal), user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return "", repository.ErrDuplicate
		}
		return "", err
	}
	return user.ID, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id=$1`, telegramID)
}

func (r *userRepository) get(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	var gender, goal string
	err := r.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.TelegramID, &u.Name, &gender, &u.WeightKg,
		&u.HeightCm, &u.Age, &goal, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.Gender = domain.Gender(gender)
	u.Goal = domain.Goal(goal)
	return &u, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `UPDATE users SET name=$2, gender=$3, weight_kg=$4, height_cm=$5, age=$6, goal=$7, updated_at=$8 WHERE id=$1`,
		user.ID, user.Name, string(user.Gender), user.WeightKg, user.HeightCm, user.Age, string(user.Goal), user.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// --- Muscle groups ---

type muscleGroupRepository struct{ *Repository }

func (r *muscleGroupRepository) Upsert(ctx context.Context, group *domain.MuscleGroup) (string, error) {
	_, err := r.pool.Exec(ctx, `INSERT INTO muscle_groups (id, slug, name, position) VALUES ($1,$2,$3,$4) ON CONFLICT (slug) DO NOTHING`,
		uuid.NewString(), group.Slug, group.Name, group.Position)
	if err != nil {
		return "", err
	}
	if err := r.pool.QueryRow(ctx, `SELECT id FROM muscle_groups WHERE slug=$1`, group.Slug).Scan(&group.ID); err != nil {
		return "", err
	}
	return group.ID, nil
}

func (r *muscleGroupRepository) GetByID(ctx context.Context, id string) (*domain.MuscleGroup, error) {
	return r.get(ctx, `SELECT id, slug, name, position FROM muscle_groups WHERE id=$1`, id)
}

func (r *muscleGroupRepository) GetBySlug(ctx context.Context, slug string) (*domain.MuscleGroup, error) {
	return r.get(ctx, `SELECT id, slug, name, position FROM muscle_groups WHERE slug=$1`, slug)
}

func (r *muscleGroupRepository) get(ctx context.Context, query, arg string) (*domain.MuscleGroup, error) {
	var g domain.MuscleGroup
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&g.ID, &g.Slug, &g.Name, &g.Position); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *muscleGroupRepository) List(ctx context.Context) ([]domain.MuscleGroup, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, slug, name, position FROM muscle_groups ORDER BY position, slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.MuscleGroup
	for rows.Next() {
		var g domain.MuscleGroup
		if err := rows.Scan(&g.ID, &g.Slug, &g.Name, &g.Position); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// --- Exercises ---

type exerciseRepository struct{ *Repository }

const exerciseColumns = `id, slug, name, kind, group_id, input_mode, tip, position`

func (r *exerciseRepository) Upsert(ctx context.Context, exercise *domain.Exercise) (string, error) {
	_, err := r.pool.Exec(ctx, `INSERT INTO exercises (`+exerciseColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8) ON CONFLICT (slug) DO NOTHING`,
		uuid.NewString(), exercise.Slug, exercise.Name, string(exercise.Kind), exercise.GroupID,
		string(exercise.InputMode), exercise.Tip, exercise.Position)
	if err != nil {
		return "", err
	}
	if err := r.pool.QueryRow(ctx, `SELECT id FROM exercises WHERE slug=$1`, exercise.Slug).Scan(&exercise.ID); err != nil {
		return "", err
	}
	return exercise.ID, nil
}

func (r *exerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	list, err := r.query(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, repository.ErrNotFound
	}
	return &list[0], nil
}

func (r *exerciseRepository) ListByGroup(ctx context.Context, groupID string, kind domain.ExerciseKind) ([]domain.Exercise, error) {
	return r.query(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE group_id=$1 AND kind=$2 ORDER BY position, name`,
		groupID, string(kind))
}

func (r *exerciseRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Exercise, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE id = ANY($1)`, ids)
}

func (r *exerciseRepository) query(ctx context.Context, query string, args ...any) ([]domain.Exercise, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Exercise
	for rows.Next() {
		var e domain.Exercise
		var kind, mode string
		if err := rows.Scan(&e.ID, &e.Slug, &e.Name, &kind, &e.GroupID, &mode, &e.Tip, &e.Position); err != nil {
			return nil, err
		}
		e.Kind = domain.ExerciseKind(kind)
		e.InputMode = domain.InputMode(mode)
		out = append(out, e)
	}
	return out, rows.Err()
}

// --- Sessions ---

type sessionRepository struct{ *Repository }

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) (string, error) {
	session.ID = uuid.NewString()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO sessions (id, user_id, created_at, completed_at) VALUES ($1,$2,$3,$4)`,
		session.ID, session.UserID, session.CreatedAt, session.CompletedAt)
	if err != nil {
		return "", err
	}
	return session.ID, nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	return r.one(ctx, `SELECT id, user_id, created_at, completed_at FROM sessions WHERE id=$1`, id)
}

func (r *sessionRepository) LatestOpenByUser(ctx context.Context, userID string) (*domain.Session, error) {
	return r.one(ctx, `SELECT id, user_id, created_at, completed_at FROM sessions
        WHERE user_id=$1 AND completed_at IS NULL ORDER BY created_at DESC LIMIT 1`, userID)
}

func (r *sessionRepository) LatestByUser(ctx context.Context, userID string) (*domain.Session, error) {
	return r.one(ctx, `SELECT id, user_id, created_at, completed_at FROM sessions
        WHERE user_id=$1 ORDER BY created_at DESC LIMIT 1`, userID)
}

func (r *sessionRepository) one(ctx context.Context, query, arg string) (*domain.Session, error) {
	var s domain.Session
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.CompletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) MarkCompleted(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE sessions SET completed_at=$2 WHERE id=$1 AND completed_at IS NULL`, id, at.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *sessionRepository) ListOpen(ctx context.Context) ([]domain.Session, error) {
	return r.many(ctx, `SELECT id, user_id, created_at, completed_at FROM sessions WHERE completed_at IS NULL ORDER BY created_at`)
}

func (r *sessionRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Session, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.many(ctx, `SELECT id, user_id, created_at, completed_at FROM sessions WHERE id = ANY($1) ORDER BY created_at`, ids)
}

func (r *sessionRepository) many(ctx context.Context, query string, args ...any) ([]domain.Session, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// --- Set records ---

type setRecordRepository struct{ *Repository }

const setRecordColumns = `id, session_id, exercise_id, user_id, kind, weight_kg, reps, duration_sec, distance_km, created_at`

func (r *setRecordRepository) Create(ctx context.Context, record *domain.SetRecord) (string, error) {
	record.ID = uuid.NewString()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO set_records (`+setRecordColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		record.ID, record.SessionID, record.ExerciseID, record.UserID, string(record.Kind),
		record.WeightKg, record.Reps, record.DurationSec, record.DistanceKm, record.CreatedAt)
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

func (r *setRecordRepository) LatestForExercise(ctx context.Context, sessionID, exerciseID string) (*domain.SetRecord, error) {
	list, err := r.query(ctx, `SELECT `+setRecordColumns+` FROM set_records
        WHERE session_id=$1 AND exercise_id=$2 ORDER BY created_at DESC LIMIT 1`, sessionID, exerciseID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, repository.ErrNotFound
	}
	return &list[0], nil
}

func (r *setRecordRepository) CountForExercise(ctx context.Context, sessionID, exerciseID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM set_records WHERE session_id=$1 AND exercise_id=$2`,
		sessionID, exerciseID).Scan(&n)
	return n, err
}

func (r *setRecordRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.SetRecord, error) {
	return r.query(ctx, `SELECT `+setRecordColumns+` FROM set_records WHERE session_id=$1 ORDER BY created_at`, sessionID)
}

func (r *setRecordRepository) LastActivity(ctx context.Context, sessionID string) (*time.Time, error) {
	var last *time.Time
	if err := r.pool.QueryRow(ctx, `SELECT MAX(created_at) FROM set_records WHERE session_id=$1`, sessionID).Scan(&last); err != nil {
		return nil, err
	}
	return last, nil
}

func (r *setRecordRepository) ListByUser(ctx context.Context, userID string, since *time.Time) ([]domain.SetRecord, error) {
	if since == nil {
		return r.query(ctx, `SELECT `+setRecordColumns+` FROM set_records WHERE user_id=$1 ORDER BY created_at`, userID)
	}
	return r.query(ctx, `SELECT `+setRecordColumns+` FROM set_records WHERE user_id=$1 AND created_at >= $2 ORDER BY created_at`,
		userID, since.UTC())
}

func (r *setRecordRepository) query(ctx context.Context, query string, args ...any) ([]domain.SetRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SetRecord
	for rows.Next() {
		var rec domain.SetRecord
		var kind string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.ExerciseID, &rec.UserID, &kind,
			&rec.WeightKg, &rec.Reps, &rec.DurationSec, &rec.DistanceKm, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Kind = domain.ExerciseKind(kind)
		out = append(out, rec)
	}
	return out, rows.Err()
}
