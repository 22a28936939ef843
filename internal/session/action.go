package session

// ActionKind enumerates the intents the controller accepts.
type ActionKind string

const (
	ActionStart          ActionKind = "start"
	ActionStartCardio    ActionKind = "start_cardio"
	ActionSelectGroup    ActionKind = "select_group"
	ActionSelectExercise ActionKind = "select_exercise"
	ActionText           ActionKind = "text"
	ActionRepeat         ActionKind = "repeat"
	ActionFinishExercise ActionKind = "finish_exercise"
	ActionBack           ActionKind = "back"
	ActionFinishSession  ActionKind = "finish_session"
)

// Actor identifies who sent an action and where to answer.
type Actor struct {
	UserKey     int64 // Chat-platform user ID
	ChatID      int64
	DisplayName string
}

// Action is a transport-neutral user intent.
type Action struct {
	Actor
	Kind     ActionKind
	Text     string // ActionText
	TargetID string // ActionSelectGroup, ActionSelectExercise
}
