package domain

// CatalogGroup is one seed entry: a group and the exercises filed under it.
type CatalogGroup struct {
	Slug      string
	Name      string
	Exercises []CatalogExercise
}

// CatalogExercise is one seeded exercise.
type CatalogExercise struct {
	Slug      string
	Name      string
	Kind      ExerciseKind
	InputMode InputMode
	Tip       string
}

// DefaultCatalog is the built-in seed. Seeding matches on slug, so entries
// already present are left untouched.
func DefaultCatalog() []CatalogGroup {
	return []CatalogGroup{
		{Slug: "chest", Name: "Chest", Exercises: []CatalogExercise{
			{Slug: "bench_press", Name: "Bench press", Kind: KindStrength, Tip: "Shoulder blades pinched, keep the hips down."},
			{Slug: "incline_db_press", Name: "Incline dumbbell press", Kind: KindStrength},
			{Slug: "chest_fly", Name: "Cable fly", Kind: KindStrength},
		}},
		{Slug: "back", Name: "Back", Exercises: []CatalogExercise{
			{Slug: "lat_pulldown", Name: "Lat pulldown", Kind: KindStrength, Tip: "Pull with the elbows, no swinging."},
			{Slug: "barbell_row", Name: "Barbell row", Kind: KindStrength},
			{Slug: "deadlift", Name: "Deadlift", Kind: KindStrength},
		}},
		{Slug: "legs", Name: "Legs", Exercises: []CatalogExercise{
			{Slug: "back_squat", Name: "Back squat", Kind: KindStrength, Tip: "Neutral spine, knees track the toes."},
			{Slug: "leg_press", Name: "Leg press", Kind: KindStrength},
			{Slug: "romanian_deadlift", Name: "Romanian deadlift", Kind: KindStrength},
		}},
		{Slug: "shoulders", Name: "Shoulders", Exercises: []CatalogExercise{
			{Slug: "overhead_press", Name: "Overhead press", Kind: KindStrength},
			{Slug: "lateral_raise", Name: "Lateral raise", Kind: KindStrength},
		}},
		{Slug: "biceps", Name: "Biceps", Exercises: []CatalogExercise{
			{Slug: "barbell_curl", Name: "Barbell curl", Kind: KindStrength},
			{Slug: "hammer_curl", Name: "Hammer curl", Kind: KindStrength},
		}},
		{Slug: "triceps", Name: "Triceps", Exercises: []CatalogExercise{
			{Slug: "triceps_pushdown", Name: "Triceps pushdown", Kind: KindStrength},
			{Slug: "close_grip_bench", Name: "Close-grip bench press", Kind: KindStrength},
		}},
		{Slug: "core", Name: "Core", Exercises: []CatalogExercise{
			{Slug: "hanging_leg_raise", Name: "Hanging leg raise", Kind: KindStrength},
			{Slug: "cable_crunch", Name: "Cable crunch", Kind: KindStrength},
		}},
		{Slug: CardioGroupSlug, Name: "Cardio", Exercises: []CatalogExercise{
			{Slug: "treadmill", Name: "Treadmill", Kind: KindCardio, InputMode: InputModeTimeDistance, Tip: "Minutes and optional km, e.g. 30 5"},
			{Slug: "bike", Name: "Exercise bike", Kind: KindCardio, InputMode: InputModeTimeDistance, Tip: "Minutes and optional km, e.g. 20 10"},
			{Slug: "elliptical", Name: "Elliptical", Kind: KindCardio, InputMode: InputModeTimeDistance, Tip: "Minutes, distance optional."},
			{Slug: "rower", Name: "Rowing machine", Kind: KindCardio, InputMode: InputModeTimeDistance, Tip: "Minutes and optional km, e.g. 15 3"},
			{Slug: "jump_rope", Name: "Jump rope", Kind: KindCardio, InputMode: InputModeRepsOrTime, Tip: "Jump count or time as MM:SS."},
		}},
	}
}
