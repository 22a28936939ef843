package session

import (
	"alcyxob/fitlog-bot/internal/chat"
	"alcyxob/fitlog-bot/internal/domain"
	"alcyxob/fitlog-bot/internal/parser"
	"errors"
	"fmt"
	"html"
	"math"
	"strings"
)

// Callback payloads of inline buttons.
const (
	CallbackGroupPrefix    = "grp:"
	CallbackExercisePrefix = "ex:"
	CallbackRepeat         = "ex:repeat"
	CallbackFinishExercise = "ex:finish"
	CallbackBackToGroups   = "back:groups"
	CallbackFinishSession  = "workout:finish"
)

// Main menu labels.
const (
	MenuTraining = "Training"
	MenuCardio   = "Cardio"
	MenuHistory  = "History"
	MenuSettings = "Settings"
)

// MainMenu is the persistent reply keyboard.
func MainMenu() *chat.Keyboard {
	return &chat.Keyboard{
		Reply: true,
		Rows: [][]chat.Button{
			{{Text: MenuTraining}, {Text: MenuCardio}},
			{{Text: MenuHistory}, {Text: MenuSettings}},
		},
	}
}

func groupsView(groups []domain.MuscleGroup) (string, *chat.Keyboard) {
	buttons := make([]chat.Button, 0, len(groups))
	for _, g := range groups {
		buttons = append(buttons, chat.Button{Text: g.Name, Data: CallbackGroupPrefix + g.ID})
	}
	rows := chat.Grid(buttons, 2)
	rows = append(rows, chat.Row(chat.Button{Text: "Finish workout", Data: CallbackFinishSession}))
	return "Pick a muscle group:", chat.Inline(rows...)
}

func exercisesView(group *domain.MuscleGroup, exercises []domain.Exercise) (string, *chat.Keyboard) {
	var rows [][]chat.Button
	for _, ex := range exercises {
		rows = append(rows, chat.Row(chat.Button{Text: ex.Name, Data: CallbackExercisePrefix + ex.ID}))
	}
	rows = append(rows, chat.Row(
		chat.Button{Text: "Back", Data: CallbackBackToGroups},
		chat.Button{Text: "Finish workout", Data: CallbackFinishSession},
	))

	text := fmt.Sprintf("<b>%s</b>\nPick an exercise:", html.EscapeString(group.Name))
	if len(exercises) == 0 {
		text = fmt.Sprintf("<b>%s</b>\nNo exercises here yet.", html.EscapeString(group.Name))
	}
	return text, chat.Inline(rows...)
}

func cardView(sl SetLogging, note string) (string, *chat.Keyboard) {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(sl.Exercise.Name))
	if sl.Exercise.Tip != "" {
		fmt.Fprintf(&b, "<i>%s</i>\n", html.EscapeString(sl.Exercise.Tip))
	}
	b.WriteString(parser.GrammarFor(&sl.Exercise).Hint())
	b.WriteString("\n\n")

	last := "-"
	if sl.Last != nil {
		last = sl.Last.String()
	}
	fmt.Fprintf(&b, "Sets: %d • Last: %s", sl.SavedSets, last)
	if note != "" {
		b.WriteString("\n\n")
		b.WriteString(note)
	}

	var rows [][]chat.Button
	if sl.Last != nil {
		rows = append(rows, chat.Row(chat.Button{Text: "Repeat " + sl.Last.String(), Data: CallbackRepeat}))
	}
	rows = append(rows, chat.Row(chat.Button{Text: "Finish exercise", Data: CallbackFinishExercise}))
	return b.String(), chat.Inline(rows...)
}

func rejectionNote(input string, err error) string {
	reason := "That does not look like a set."
	switch {
	case errors.Is(err, parser.ErrNonPositive):
		reason = "Values must be greater than zero."
	case errors.Is(err, parser.ErrOutOfRange):
		reason = "That value is too large."
	}
	return fmt.Sprintf("Could not save %q. %s", html.EscapeString(strings.TrimSpace(input)), reason)
}

func summaryText(totals domain.SessionTotals) string {
	return fmt.Sprintf("<b>Workout finished</b>\nSets: %d\nVolume: %s kg", totals.SetCount, formatKg(totals.VolumeKg))
}

func incompleteProfileText(user *domain.User) string {
	return fmt.Sprintf("Complete your profile before logging. Missing: %s.\nUse /set gender male, /set weight 80, /set height 180, /set age 30.",
		strings.Join(user.MissingProfileFields(), ", "))
}

func formatKg(v float64) string {
	return domain.FormatNumber(math.Round(v*10) / 10)
}

const (
	msgFinishExerciseFirst = "Finish the exercise first."
	msgNoOpenSession       = "No active workout. Tap Training to start a new one."
	msgPickExercise        = "Pick an exercise first."
	msgNothingToRepeat     = "Nothing to repeat yet. Send your first set."
	msgUnknownTarget       = "That option is no longer available."
	msgExpired             = "Your previous workout was closed after a long break."
)
