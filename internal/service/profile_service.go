package service

import (
	"alcyxob/fitlog-bot/internal/clock"
	"alcyxob/fitlog-bot/internal/domain"
	"alcyxob/fitlog-bot/internal/repository"
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
)

// --- Error Definitions ---
var (
	ErrUnknownField = errors.New("unknown profile field")
	ErrInvalidValue = errors.New("invalid profile value")
	ErrUserNotFound = errors.New("user not found")
)

// Profile field names accepted by SetField.
const (
	FieldGender = "gender"
	FieldWeight = "weight"
	FieldHeight = "height"
	FieldAge    = "age"
	FieldGoal   = "goal"
)

// Accepted ranges of the numeric profile fields.
const (
	MinWeightKg = 30.0
	MaxWeightKg = 300.0
	MinHeightCm = 120
	MaxHeightCm = 230
	MinAge      = 10
	MaxAge      = 100
)

type ProfileService interface {
	// EnsureUser returns the user, creating it on first contact.
	EnsureUser(ctx context.Context, telegramID int64, name string) (*domain.User, error)
	SetField(ctx context.Context, telegramID int64, field, raw string) (*domain.User, error)
	Describe(user *domain.User) string
}

type profileService struct {
	userRepo repository.UserRepository
	clock    clock.Clock
}

func NewProfileService(userRepo repository.UserRepository, clk clock.Clock) ProfileService {
	if clk == nil {
		clk = clock.System{}
	}
	return &profileService{userRepo: userRepo, clock: clk}
}

func (s *profileService) EnsureUser(ctx context.Context, telegramID int64, name string) (*domain.User, error) {
	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := s.clock.Now().UTC()
	user = &domain.User{TelegramID: telegramID, Name: name, CreatedAt: now, UpdatedAt: now}
	id, err := s.userRepo.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		// Created concurrently by the session controller.
		return s.userRepo.GetByTelegramID(ctx, telegramID)
	}
	if err != nil {
		return nil, err
	}
	user.ID = id
	return user, nil
}

// SetField validates raw and stores it on the user's profile.
func (s *profileService) SetField(ctx context.Context, telegramID int64, field, raw string) (*domain.User, error) {
	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	raw = strings.TrimSpace(raw)
	switch strings.ToLower(strings.TrimSpace(field)) {
	case FieldGender:
		g, err := parseGender(raw)
		if err != nil {
			return nil, err
		}
		user.Gender = g
	case FieldWeight:
		w, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
		if err != nil || w < MinWeightKg || w > MaxWeightKg {
			return nil, fmt.Errorf("%w: weight must be between %v and %v kg", ErrInvalidValue, MinWeightKg, MaxWeightKg)
		}
		user.WeightKg = &w
	case FieldHeight:
		h, err := parseIntInRange(raw, MinHeightCm, MaxHeightCm)
		if err != nil {
			return nil, fmt.Errorf("%w: height must be between %d and %d cm", ErrInvalidValue, MinHeightCm, MaxHeightCm)
		}
		user.HeightCm = &h
	case FieldAge:
		a, err := parseIntInRange(raw, MinAge, MaxAge)
		if err != nil {
			return nil, fmt.Errorf("%w: age must be between %d and %d", ErrInvalidValue, MinAge, MaxAge)
		}
		user.Age = &a
	case FieldGoal:
		g, err := parseGoal(raw)
		if err != nil {
			return nil, err
		}
		user.Goal = g
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	user.UpdatedAt = s.clock.Now().UTC()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Describe renders the profile as HTML text.
func (s *profileService) Describe(user *domain.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(user.Name))
	fmt.Fprintf(&b, "Gender: %s\n", orDash(string(user.Gender)))
	weight := "-"
	if user.WeightKg != nil {
		weight = domain.FormatNumber(*user.WeightKg) + " kg"
	}
	fmt.Fprintf(&b, "Weight: %s\n", weight)
	fmt.Fprintf(&b, "Height: %s\n", intOrDash(user.HeightCm, " cm"))
	fmt.Fprintf(&b, "Age: %s\n", intOrDash(user.Age, ""))
	fmt.Fprintf(&b, "Goal: %s", orDash(string(user.Goal)))

	if missing := user.MissingProfileFields(); len(missing) > 0 {
		fmt.Fprintf(&b, "\n\nStill needed before logging: %s.\nSet a field with /set <field> <value>.", strings.Join(missing, ", "))
	}
	return b.String()
}

func parseGender(raw string) (domain.Gender, error) {
	switch strings.ToLower(raw) {
	case "male", "m":
		return domain.GenderMale, nil
	case "female", "f":
		return domain.GenderFemale, nil
	}
	return "", fmt.Errorf("%w: gender must be male or female", ErrInvalidValue)
}

func parseGoal(raw string) (domain.Goal, error) {
	g := domain.Goal(strings.ToLower(raw))
	switch g {
	case domain.GoalLoseWeight, domain.GoalGainMuscle, domain.GoalHealth, domain.GoalNone:
		return g, nil
	}
	return "", fmt.Errorf("%w: goal must be one of lose_weight, gain_muscle, health, none", ErrInvalidValue)
}

func parseIntInRange(raw string, min, max int) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < min || n > max {
		return 0, fmt.Errorf("%d out of range", n)
	}
	return n, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func intOrDash(v *int, unit string) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v) + unit
}
