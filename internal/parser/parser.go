// Package parser turns free-text set input into measurements. Every function
// is pure: no I/O, no retries, no state.
package parser

import (
	"alcyxob/fitlog-bot/internal/domain"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrMalformed   = errors.New("input does not match the expected format")
	ErrNonPositive = errors.New("values must be greater than zero")
	ErrOutOfRange  = errors.New("value is larger than any real set")
)

// Upper bounds on accepted values. Checked before any integer conversion.
const (
	MaxWeightKg   = 1000.0
	MaxReps       = 1000
	MaxMinutes    = 24 * 60.0
	MaxDistanceKm = 1000.0
)

// Grammar names an accepted input syntax.
type Grammar string

const (
	GrammarStrength     Grammar = "strength"
	GrammarTimeDistance Grammar = "time_distance"
	GrammarRepsOrTime   Grammar = "reps_or_time"
)

// Hint is the accepted syntax shown back to the user.
func (g Grammar) Hint() string {
	switch g {
	case GrammarStrength:
		return "Send weight and reps: 80 8, 80/8 or 80x8. Decimals with . or , are fine."
	case GrammarTimeDistance:
		return "Send minutes and optional km: 30, 30 5.2, 30/5 or 30, 5.2."
	case GrammarRepsOrTime:
		return "Send a jump count (120) or a time as MM:SS (05:30)."
	}
	return ""
}

// RejectionError reports why input was refused.
type RejectionError struct {
	Grammar Grammar
	Input   string
	Err     error
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Grammar, e.Input, e.Err)
}

func (e *RejectionError) Unwrap() error { return e.Err }

func reject(g Grammar, input string, err error) error {
	return &RejectionError{Grammar: g, Input: input, Err: err}
}

var (
	// Separators: whitespace, slash, latin x, cyrillic х, multiplication sign.
	strengthRe     = regexp.MustCompile(`(?i)^\s*(\d+(?:[.,]\d+)?)\s*(?:/|x|х|×|\s+)\s*(\d+)\s*$`)
	timeDistanceRe = regexp.MustCompile(`^\s*(\d+(?:[.,]\d+)?)\s*(?:[,/ ]\s*(\d+(?:[.,]\d+)?))?\s*$`)
	repsRe         = regexp.MustCompile(`^\d{1,6}$`)
	clockRe        = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

// GrammarFor returns the grammar used for an exercise.
func GrammarFor(ex *domain.Exercise) Grammar {
	if ex.Kind != domain.KindCardio {
		return GrammarStrength
	}
	if ex.Mode() == domain.InputModeRepsOrTime {
		return GrammarRepsOrTime
	}
	return GrammarTimeDistance
}

// Parse dispatches on the exercise kind and input mode.
func Parse(ex *domain.Exercise, text string) (domain.Measurement, error) {
	if ex.Kind == domain.KindCardio {
		return ParseCardio(ex.Mode(), text)
	}
	return ParseStrength(text)
}

// ParseStrength accepts "<weight><sep><reps>".
func ParseStrength(text string) (domain.Measurement, error) {
	m := strengthRe.FindStringSubmatch(text)
	if m == nil {
		return domain.Measurement{}, reject(GrammarStrength, text, ErrMalformed)
	}
	weight, err := parseDecimal(m[1])
	if err != nil {
		return domain.Measurement{}, reject(GrammarStrength, text, ErrMalformed)
	}
	reps, err := strconv.Atoi(m[2])
	if errors.Is(err, strconv.ErrRange) {
		return domain.Measurement{}, reject(GrammarStrength, text, ErrOutOfRange)
	}
	if err != nil {
		return domain.Measurement{}, reject(GrammarStrength, text, ErrMalformed)
	}
	if weight <= 0 || reps <= 0 {
		return domain.Measurement{}, reject(GrammarStrength, text, ErrNonPositive)
	}
	if weight > MaxWeightKg || reps > MaxReps {
		return domain.Measurement{}, reject(GrammarStrength, text, ErrOutOfRange)
	}
	return domain.Strength(weight, reps), nil
}

// ParseCardio applies the grammar of the given input mode.
func ParseCardio(mode domain.InputMode, text string) (domain.Measurement, error) {
	if mode == domain.InputModeRepsOrTime {
		return parseRepsOrTime(text)
	}
	return parseTimeDistance(text)
}

func parseTimeDistance(text string) (domain.Measurement, error) {
	m := timeDistanceRe.FindStringSubmatch(text)
	if m == nil {
		return domain.Measurement{}, reject(GrammarTimeDistance, text, ErrMalformed)
	}
	rawMinutes, err := parseDecimal(m[1])
	if err != nil {
		return domain.Measurement{}, reject(GrammarTimeDistance, text, ErrMalformed)
	}
	if rawMinutes <= 0 {
		return domain.Measurement{}, reject(GrammarTimeDistance, text, ErrNonPositive)
	}
	if rawMinutes > MaxMinutes {
		return domain.Measurement{}, reject(GrammarTimeDistance, text, ErrOutOfRange)
	}
	seconds := roundMinutes(rawMinutes) * 60
	out := domain.Measurement{DurationSec: &seconds}

	if m[2] != "" {
		km, err := parseDecimal(m[2])
		if err != nil {
			return domain.Measurement{}, reject(GrammarTimeDistance, text, ErrMalformed)
		}
		if km <= 0 {
			return domain.Measurement{}, reject(GrammarTimeDistance, text, ErrNonPositive)
		}
		if km > MaxDistanceKm {
			return domain.Measurement{}, reject(GrammarTimeDistance, text, ErrOutOfRange)
		}
		out.DistanceKm = &km
	}
	return out, nil
}

func parseRepsOrTime(text string) (domain.Measurement, error) {
	s := strings.TrimSpace(text)
	if repsRe.MatchString(s) {
		reps, _ := strconv.Atoi(s)
		if reps <= 0 {
			return domain.Measurement{}, reject(GrammarRepsOrTime, text, ErrNonPositive)
		}
		return domain.Measurement{Reps: &reps}, nil
	}
	if m := clockRe.FindStringSubmatch(s); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		secs, _ := strconv.Atoi(m[2])
		if secs >= 60 {
			return domain.Measurement{}, reject(GrammarRepsOrTime, text, ErrMalformed)
		}
		total := minutes*60 + secs
		if total <= 0 {
			return domain.Measurement{}, reject(GrammarRepsOrTime, text, ErrNonPositive)
		}
		return domain.Measurement{DurationSec: &total}, nil
	}
	return domain.Measurement{}, reject(GrammarRepsOrTime, text, ErrMalformed)
}

// parseDecimal accepts both "82.5" and "82,5". Values too large for a
// float64 come back as +Inf and fail the range checks.
func parseDecimal(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if errors.Is(err, strconv.ErrRange) {
		return v, nil
	}
	return v, err
}

// roundMinutes rounds half up with a floor of one minute.
func roundMinutes(v float64) int {
	n := int(math.Floor(v + 0.5))
	if n < 1 {
		return 1
	}
	return n
}
