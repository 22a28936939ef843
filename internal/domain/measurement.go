package domain

import (
	"fmt"
	"strconv"
)

// Measurement is the parsed payload of one SetRecord. Strength measurements
// carry WeightKg and Reps; cardio measurements carry DurationSec with either
// DistanceKm (time_distance) or Reps (reps_or_time, never both).
type Measurement struct {
	WeightKg    *float64 `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	Reps        *int     `bson:"reps,omitempty" json:"reps,omitempty"`
	DurationSec *int     `bson:"durationSec,omitempty" json:"durationSec,omitempty"`
	DistanceKm  *float64 `bson:"distanceKm,omitempty" json:"distanceKm,omitempty"`
}

// Strength builds a strength measurement.
func Strength(weightKg float64, reps int) Measurement {
	return Measurement{WeightKg: &weightKg, Reps: &reps}
}

// Clone returns a copy that shares no pointers with m.
func (m Measurement) Clone() Measurement {
	var out Measurement
	if m.WeightKg != nil {
		v := *m.WeightKg
		out.WeightKg = &v
	}
	if m.Reps != nil {
		v := *m.Reps
		out.Reps = &v
	}
	if m.DurationSec != nil {
		v := *m.DurationSec
		out.DurationSec = &v
	}
	if m.DistanceKm != nil {
		v := *m.DistanceKm
		out.DistanceKm = &v
	}
	return out
}

// Volume is weight times reps, or zero when either field is missing.
func (m Measurement) Volume() float64 {
	if m.WeightKg == nil || m.Reps == nil {
		return 0
	}
	return *m.WeightKg * float64(*m.Reps)
}

// Minutes returns the duration in minutes.
func (m Measurement) Minutes() float64 {
	if m.DurationSec == nil {
		return 0
	}
	return float64(*m.DurationSec) / 60
}

// Km returns the distance or zero.
func (m Measurement) Km() float64 {
	if m.DistanceKm == nil {
		return 0
	}
	return *m.DistanceKm
}

func (m Measurement) String() string {
	switch {
	case m.WeightKg != nil && m.Reps != nil:
		return fmt.Sprintf("%s kg × %d", FormatNumber(*m.WeightKg), *m.Reps)
	case m.DurationSec != nil && m.DistanceKm != nil:
		return fmt.Sprintf("%d min, %s km", *m.DurationSec/60, FormatNumber(*m.DistanceKm))
	case m.DurationSec != nil && *m.DurationSec%60 != 0:
		return fmt.Sprintf("%02d:%02d", *m.DurationSec/60, *m.DurationSec%60)
	case m.DurationSec != nil:
		return fmt.Sprintf("%d min", *m.DurationSec/60)
	case m.Reps != nil:
		return fmt.Sprintf("%d reps", *m.Reps)
	}
	return "-"
}

// FormatNumber prints a float without trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
