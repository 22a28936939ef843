package service

import (
	"alcyxob/fitlog-bot/internal/domain"
	"alcyxob/fitlog-bot/internal/repository/memory"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureUserIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewProfileService(memory.NewUserRepository(), nil)

	first, err := svc.EnsureUser(ctx, 42, "Sam")
	require.NoError(t, err)
	second, err := svc.EnsureUser(ctx, 42, "Sam again")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Sam", second.Name)
}

func TestSetFieldCompletesProfile(t *testing.T) {
	ctx := context.Background()
	svc := NewProfileService(memory.NewUserRepository(), nil)
	_, err := svc.EnsureUser(ctx, 42, "Sam")
	require.NoError(t, err)

	steps := [][2]string{{"gender", "Female"}, {"weight", "62,5"}, {"height", "168"}, {"age", "29"}}
	var user *domain.User
	for _, s := range steps {
		user, err = svc.SetField(ctx, 42, s[0], s[1])
		require.NoError(t, err, s[0])
	}
	assert.True(t, user.IsProfileComplete())
	assert.Equal(t, domain.GenderFemale, user.Gender)
	assert.Equal(t, 62.5, *user.WeightKg)
	assert.NotContains(t, svc.Describe(user), "Still needed")
}

func TestSetFieldValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewProfileService(memory.NewUserRepository(), nil)
	_, err := svc.EnsureUser(ctx, 42, "Sam")
	require.NoError(t, err)

	tests := []struct {
		field, value string
		want         error
	}{
		{"weight", "29.9", ErrInvalidValue},
		{"weight", "301", ErrInvalidValue},
		{"weight", "heavy", ErrInvalidValue},
		{"height", "119", ErrInvalidValue},
		{"height", "231", ErrInvalidValue},
		{"age", "9", ErrInvalidValue},
		{"age", "101", ErrInvalidValue},
		{"gender", "robot", ErrInvalidValue},
		{"goal", "fly", ErrInvalidValue},
		{"shoe", "42", ErrUnknownField},
	}
	for _, tt := range tests {
		t.Run(tt.field+"="+tt.value, func(t *testing.T) {
			_, err := svc.SetField(ctx, 42, tt.field, tt.value)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	for _, ok := range [][2]string{{"weight", "30"}, {"weight", "300"}, {"height", "120"}, {"age", "100"}, {"goal", "health"}} {
		_, err := svc.SetField(ctx, 42, ok[0], ok[1])
		assert.NoError(t, err, ok)
	}
}

func TestSetFieldUnknownUser(t *testing.T) {
	svc := NewProfileService(memory.NewUserRepository(), nil)
	_, err := svc.SetField(context.Background(), 1, "age", "30")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDescribeListsMissingFields(t *testing.T) {
	svc := NewProfileService(memory.NewUserRepository(), nil)
	text := svc.Describe(&domain.User{Name: "<Sam>", Gender: domain.GenderMale})
	assert.Contains(t, text, "&lt;Sam&gt;")
	assert.Contains(t, text, "weight, height, age")
}
