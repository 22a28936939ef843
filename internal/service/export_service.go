package service

import (
	"alcyxob/fitlog-bot/internal/clock"
	"alcyxob/fitlog-bot/internal/domain"
	"alcyxob/fitlog-bot/internal/repository"
	"alcyxob/fitlog-bot/internal/storage"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var ErrExportDisabled = errors.New("export storage is not configured")

// Export describes one uploaded CSV.
type Export struct {
	ObjectKey   string    `json:"objectKey"`
	Rows        int       `json:"rows"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type ExportService interface {
	// Export uploads every set record of the user as CSV and returns a download link.
	Export(ctx context.Context, telegramID int64) (*Export, error)
}

type exportService struct {
	store   *repository.Store
	files   storage.FileStorage // nil when disabled
	clock   clock.Clock
	expires time.Duration
}

func NewExportService(store *repository.Store, files storage.FileStorage, clk clock.Clock) ExportService {
	if clk == nil {
		clk = clock.System{}
	}
	return &exportService{store: store, files: files, clock: clk, expires: storage.DefaultPresignedURLExpiry}
}

var csvHeader = []string{"session_id", "created_at", "exercise", "kind", "weight_kg", "reps", "duration_sec", "distance_km"}

func (s *exportService) Export(ctx context.Context, telegramID int64) (*Export, error) {
	if s.files == nil {
		return nil, ErrExportDisabled
	}
	user, err := s.store.Users.GetByTelegramID(ctx, telegramID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	records, err := s.store.SetRecords.ListByUser(ctx, user.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("records of user %s: %w", user.ID, err)
	}
	body, err := s.encode(ctx, records)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	key := fmt.Sprintf("exports/%d/%s.csv", telegramID, now.Format("20060102T150405Z"))
	if err := s.files.PutObject(ctx, key, "text/csv", body); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, key, s.expires)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}
	return &Export{ObjectKey: key, Rows: len(records), DownloadURL: url, ExpiresAt: now.Add(s.expires)}, nil
}

func (s *exportService) encode(ctx context.Context, records []domain.SetRecord) ([]byte, error) {
	names, err := s.exerciseNames(ctx, records)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range records {
		row := []string{
			r.SessionID,
			r.CreatedAt.UTC().Format(time.RFC3339),
			names[r.ExerciseID],
			string(r.Kind),
			optFloat(r.WeightKg),
			optInt(r.Reps),
			optInt(r.DurationSec),
			optFloat(r.DistanceKm),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func (s *exportService) exerciseNames(ctx context.Context, records []domain.SetRecord) (map[string]string, error) {
	seen := make(map[string]struct{})
	var ids []string
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
	exercises, err := s.store.Exercises.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("exercise names: %w", err)
	}
	for _, ex := range exercises {
		names[ex.ID] = ex.Name
	}
	return names, nil
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return domain.FormatNumber(*v)
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
