package domain

import "time"

// Gender of the user, used only by the profile gate.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Goal is the optional training goal chosen during onboarding.
type Goal string

const (
	GoalLoseWeight Goal = "lose_weight"
	GoalGainMuscle Goal = "gain_muscle"
	GoalHealth     Goal = "health"
	GoalNone       Goal = "none"
)

// User is created on first contact and mutated only by profile edits.
type User struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	TelegramID int64     `bson:"telegramId" json:"telegramId"` // Unique
	Name       string    `bson:"name" json:"name"`
	Gender     Gender    `bson:"gender,omitempty" json:"gender,omitempty"`
	WeightKg   *float64  `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	HeightCm   *int      `bson:"heightCm,omitempty" json:"heightCm,omitempty"`
	Age        *int      `bson:"age,omitempty" json:"age,omitempty"`
	Goal       Goal      `bson:"goal,omitempty" json:"goal,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsProfileComplete reports whether every field required before logging is present.
// Goal is optional.
func (u *User) IsProfileComplete() bool {
	if u == nil {
		return false
	}
	return u.Gender != "" && u.WeightKg != nil && u.HeightCm != nil && u.Age != nil
}

// MissingProfileFields lists the gating fields that are still empty.
func (u *User) MissingProfileFields() []string {
	var missing []string
	if u.Gender == "" {
		missing = append(missing, "gender")
	}
	if u.WeightKg == nil {
		missing = append(missing, "weight")
	}
	if u.HeightCm == nil {
		missing = append(missing, "height")
	}
	if u.Age == nil {
		missing = append(missing, "age")
	}
	return missing
}
