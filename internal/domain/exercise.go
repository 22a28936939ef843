package domain

// ExerciseKind separates strength work from cardio work.
type ExerciseKind string

const (
	KindStrength ExerciseKind = "strength"
	KindCardio   ExerciseKind = "cardio"
)

// InputMode selects the cardio input grammar.
type InputMode string

const (
	InputModeTimeDistance InputMode = "time_distance"
	InputModeRepsOrTime   InputMode = "reps_or_time"
)

// CardioGroupSlug identifies the group that holds the cardio machines.
const CardioGroupSlug = "cardio"

// MuscleGroup is a seeded, read-only grouping of exercises.
type MuscleGroup struct {
	ID       string `bson:"_id,omitempty" json:"id"`
	Slug     string `bson:"slug" json:"slug"` // Unique
	Name     string `bson:"name" json:"name"`
	Position int    `bson:"position" json:"position"`
}

// IsCardio reports whether the group lists cardio machines.
func (g *MuscleGroup) IsCardio() bool {
	return g.Slug == CardioGroupSlug
}

// Exercise is a seeded catalog entry.
type Exercise struct {
	ID        string       `bson:"_id,omitempty" json:"id"`
	Slug      string       `bson:"slug" json:"slug"` // Unique
	Name      string       `bson:"name" json:"name"`
	Kind      ExerciseKind `bson:"kind" json:"kind"`
	GroupID   string       `bson:"groupId,omitempty" json:"groupId,omitempty"`
	InputMode InputMode    `bson:"inputMode,omitempty" json:"inputMode,omitempty"` // Cardio only
	Tip       string       `bson:"tip,omitempty" json:"tip,omitempty"`
	Position  int          `bson:"position" json:"position"`
}

// Mode returns the effective cardio input mode, defaulting to time_distance.
func (e *Exercise) Mode() InputMode {
	if e.InputMode == "" {
		return InputModeTimeDistance
	}
	return e.InputMode
}
