// Package bot turns Telegram updates into session actions and service calls.
package bot

import (
	"alcyxob/fitlog-bot/internal/service"
	"alcyxob/fitlog-bot/internal/session"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Commands handled outside the session controller.
const (
	CommandStart    = "start"
	CommandHelp     = "help"
	CommandProfile  = "profile"
	CommandSet      = "set"
	CommandFeedback = "feedback"
	CommandReport   = "report"
)

// Input is the normalized form of one update. At most one of Action and
// Command is set; an unknown callback carries neither.
type Input struct {
	Actor  session.Actor
	Action *session.Action

	Command string
	Args    string

	// Callback queries only.
	CallbackID string
	MessageID  int
}

// IsCallback reports whether the input came from an inline button.
func (in Input) IsCallback() bool { return in.CallbackID != "" }

// Normalize maps an update onto an Input. Updates the bot does not handle
// return false.
func Normalize(update tgbotapi.Update) (Input, bool) {
	switch {
	case update.CallbackQuery != nil:
		return normalizeCallback(update.CallbackQuery)
	case update.Message != nil:
		return normalizeMessage(update.Message)
	}
	return Input{}, false
}

func normalizeMessage(msg *tgbotapi.Message) (Input, bool) {
	if msg.From == nil || msg.Chat == nil {
		return Input{}, false
	}
	in := Input{Actor: actor(msg.From, msg.Chat.ID)}

	if msg.IsCommand() {
		cmd := strings.ToLower(msg.Command())
		args := strings.TrimSpace(msg.CommandArguments())
		switch cmd {
		case "train", "workout":
			in.Action = in.action(session.ActionStart)
		case "cardio":
			in.Action = in.action(session.ActionStartCardio)
		case "finish":
			in.Action = in.action(session.ActionFinishSession)
		case CommandStart, CommandHelp, CommandProfile, CommandSet, CommandFeedback, CommandReport:
			in.Command, in.Args = cmd, args
		default:
			in.Command = CommandHelp
		}
		return in, true
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return Input{}, false
	}
	switch text {
	case session.MenuTraining:
		in.Action = in.action(session.ActionStart)
	case session.MenuCardio:
		in.Action = in.action(session.ActionStartCardio)
	case session.MenuHistory:
		in.Command = CommandReport
	case session.MenuSettings:
		in.Command = CommandProfile
	default:
		in.Action = in.action(session.ActionText)
		in.Action.Text = text
	}
	return in, true
}

func normalizeCallback(q *tgbotapi.CallbackQuery) (Input, bool) {
	if q.From == nil || q.Message == nil || q.Message.Chat == nil {
		return Input{}, false
	}
	in := Input{
		Actor:      actor(q.From, q.Message.Chat.ID),
		CallbackID: q.ID,
		MessageID:  q.Message.MessageID,
	}

	data := q.Data
	switch {
	case data == session.CallbackRepeat:
		in.Action = in.action(session.ActionRepeat)
	case data == session.CallbackFinishExercise:
		in.Action = in.action(session.ActionFinishExercise)
	case data == session.CallbackBackToGroups:
		in.Action = in.action(session.ActionBack)
	case data == session.CallbackFinishSession:
		in.Action = in.action(session.ActionFinishSession)
	case strings.HasPrefix(data, session.CallbackGroupPrefix):
		in.Action = in.action(session.ActionSelectGroup)
		in.Action.TargetID = strings.TrimPrefix(data, session.CallbackGroupPrefix)
	case strings.HasPrefix(data, session.CallbackExercisePrefix):
		in.Action = in.action(session.ActionSelectExercise)
		in.Action.TargetID = strings.TrimPrefix(data, session.CallbackExercisePrefix)
	case strings.HasPrefix(data, service.ReportCallbackPrefix):
		in.Command = CommandReport
		in.Args = strings.TrimPrefix(data, service.ReportCallbackPrefix)
	default:
		// Unknown payloads are still acknowledged.
		return in, true
	}
	return in, true
}

func (in Input) action(kind session.ActionKind) *session.Action {
	return &session.Action{Actor: in.Actor, Kind: kind}
}

func actor(from *tgbotapi.User, chatID int64) session.Actor {
	name := strings.TrimSpace(from.FirstName + " " + from.LastName)
	if name == "" {
		name = from.UserName
	}
	return session.Actor{UserKey: from.ID, ChatID: chatID, DisplayName: name}
}
