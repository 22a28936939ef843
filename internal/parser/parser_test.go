package parser

import (
	"alcyxob/fitlog-bot/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrengthSeparatorsAndDecimals(t *testing.T) {
	for _, input := range []string{"82,5 6", "82.5 6", "82.5/6", "82.5x6", "82,5 X 6", "82.5х6", "  82.5   6  "} {
		m, err := ParseStrength(input)
		require.NoError(t, err, input)
		require.NotNil(t, m.WeightKg)
		require.NotNil(t, m.Reps)
		assert.Equal(t, 82.5, *m.WeightKg, input)
		assert.Equal(t, 6, *m.Reps, input)
		assert.Nil(t, m.DurationSec)
	}
}

func TestParseStrengthRejects(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"0 10", ErrNonPositive},
		{"80 0", ErrNonPositive},
		{"0,0 5", ErrNonPositive},
		{"-5 10", ErrMalformed},
		{"80", ErrMalformed},
		{"eighty 8", ErrMalformed},
		{"80 8.5", ErrMalformed},
		{"80 8 3", ErrMalformed},
		{"", ErrMalformed},
		{"1000.5 5", ErrOutOfRange},
		{"80 1001", ErrOutOfRange},
		{"80 99999999999999999999", ErrOutOfRange},
	}
	for _, tt := range tests {
		_, err := ParseStrength(tt.input)
		require.ErrorIs(t, err, tt.want, tt.input)

		var rej *RejectionError
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, GrammarStrength, rej.Grammar)
	}
}

func TestParseTimeDistance(t *testing.T) {
	tests := []struct {
		input   string
		minutes int
		km      *float64
	}{
		{"30, 6.2", 30, ptr(6.2)},
		{"45/12", 45, ptr(12)},
		{"25", 25, nil},
		{"20 10", 20, ptr(10)},
		{"30 5,5", 30, ptr(5.5)},
		{"12.5", 13, nil},
		{"12.4", 12, nil},
		{"0.3", 1, nil},
	}
	for _, tt := range tests {
		m, err := ParseCardio(domain.InputModeTimeDistance, tt.input)
		require.NoError(t, err, tt.input)
		require.NotNil(t, m.DurationSec)
		assert.Equal(t, tt.minutes*60, *m.DurationSec, tt.input)
		if tt.km == nil {
			assert.Nil(t, m.DistanceKm, tt.input)
		} else {
			require.NotNil(t, m.DistanceKm, tt.input)
			assert.Equal(t, *tt.km, *m.DistanceKm, tt.input)
		}
		assert.Nil(t, m.Reps)
	}
}

func TestParseTimeDistanceRejects(t *testing.T) {
	_, err := ParseCardio(domain.InputModeTimeDistance, "0")
	require.ErrorIs(t, err, ErrNonPositive)

	_, err = ParseCardio(domain.InputModeTimeDistance, "30 0")
	require.ErrorIs(t, err, ErrNonPositive)

	for _, input := range []string{"", "abc", "30 km", "30 5 1", "-10"} {
		_, err := ParseCardio(domain.InputModeTimeDistance, input)
		require.ErrorIs(t, err, ErrMalformed, input)
	}

	// Large values are refused before they reach the integer duration.
	for _, input := range []string{"200000000000000000", "99999999999999999999", "1441", "30, 99999999999999999999999", "30 1000.5"} {
		m, err := ParseCardio(domain.InputModeTimeDistance, input)
		require.ErrorIs(t, err, ErrOutOfRange, input)
		assert.Nil(t, m.DurationSec, input)
	}

	m, err := ParseCardio(domain.InputModeTimeDistance, "1440 1000")
	require.NoError(t, err)
	assert.Equal(t, 1440*60, *m.DurationSec)
}

func TestParseRepsOrTimeIsExclusive(t *testing.T) {
	m, err := ParseCardio(domain.InputModeRepsOrTime, "120")
	require.NoError(t, err)
	require.NotNil(t, m.Reps)
	assert.Equal(t, 120, *m.Reps)
	assert.Nil(t, m.DurationSec)

	m, err = ParseCardio(domain.InputModeRepsOrTime, " 05:30 ")
	require.NoError(t, err)
	require.NotNil(t, m.DurationSec)
	assert.Equal(t, 330, *m.DurationSec)
	assert.Nil(t, m.Reps)

	for _, input := range []string{"5:75", "1234567", "5 min", "1:2", "00:00", "0"} {
		_, err := ParseCardio(domain.InputModeRepsOrTime, input)
		require.Error(t, err, input)
	}
}

func TestParseDispatchesOnExercise(t *testing.T) {
	rope := &domain.Exercise{Kind: domain.KindCardio, InputMode: domain.InputModeRepsOrTime}
	m, err := Parse(rope, "200")
	require.NoError(t, err)
	assert.Equal(t, 200, *m.Reps)
	assert.Equal(t, GrammarRepsOrTime, GrammarFor(rope))

	bench := &domain.Exercise{Kind: domain.KindStrength}
	_, err = Parse(bench, "200")
	require.ErrorIs(t, err, ErrMalformed)
	assert.Equal(t, GrammarStrength, GrammarFor(bench))

	treadmill := &domain.Exercise{Kind: domain.KindCardio}
	assert.Equal(t, GrammarTimeDistance, GrammarFor(treadmill))
	assert.NotEmpty(t, GrammarFor(treadmill).Hint())
}

func ptr(v float64) *float64 { return &v }
