package bot

import (
	"alcyxob/fitlog-bot/internal/chat"
	"alcyxob/fitlog-bot/internal/logging"
	"alcyxob/fitlog-bot/internal/service"
	"alcyxob/fitlog-bot/internal/session"
	"alcyxob/fitlog-bot/internal/stats"
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `<b>Fitness log</b>
Training: pick a muscle group, an exercise, then send sets like 80 8.
Cardio: pick a machine and send minutes and km like 30 5.
/report [weekly|monthly|alltime] shows your stats.
/profile shows your profile, /set <field> <value> edits it.
/feedback <text> sends a note to the team.`

// Router dispatches normalized updates to the session controller and the
// profile, feedback and report services.
type Router struct {
	ctrl     *session.Controller
	profile  service.ProfileService
	feedback service.FeedbackService
	reports  service.ReportService
	surface  chat.Surface
	log      logging.Logger
}

func NewRouter(ctrl *session.Controller, profile service.ProfileService, feedback service.FeedbackService,
	reports service.ReportService, surface chat.Surface, log logging.Logger) *Router {
	return &Router{
		ctrl:     ctrl,
		profile:  profile,
		feedback: feedback,
		reports:  reports,
		surface:  surface,
		log:      log,
	}
}

// HandleUpdate processes one update. Callback queries are always answered.
func (r *Router) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	in, ok := Normalize(update)
	if !ok {
		return nil
	}
	if in.IsCallback() {
		defer func() {
			if err := r.surface.AnswerCallback(ctx, in.CallbackID, ""); err != nil {
				r.log.Debugf("bot: answer callback %s: %v", in.CallbackID, err)
			}
		}()
	}

	switch {
	case in.Action != nil:
		return r.ctrl.Handle(ctx, *in.Action)
	case in.Command != "":
		return r.command(ctx, in)
	}
	return nil
}

func (r *Router) command(ctx context.Context, in Input) error {
	switch in.Command {
	case CommandStart:
		return r.start(ctx, in)
	case CommandProfile:
		return r.showProfile(ctx, in)
	case CommandSet:
		return r.setField(ctx, in)
	case CommandFeedback:
		return r.submitFeedback(ctx, in)
	case CommandReport:
		return r.report(ctx, in)
	default:
		return r.reply(ctx, in, helpText, session.MainMenu())
	}
}

func (r *Router) start(ctx context.Context, in Input) error {
	user, err := r.profile.EnsureUser(ctx, in.Actor.UserKey, in.Actor.DisplayName)
	if err != nil {
		return fmt.Errorf("ensure user %d: %w", in.Actor.UserKey, err)
	}
	text := helpText
	if !user.IsProfileComplete() {
		text += "\n\n" + r.profile.Describe(user)
	}
	return r.reply(ctx, in, text, session.MainMenu())
}

func (r *Router) showProfile(ctx context.Context, in Input) error {
	user, err := r.profile.EnsureUser(ctx, in.Actor.UserKey, in.Actor.DisplayName)
	if err != nil {
		return fmt.Errorf("ensure user %d: %w", in.Actor.UserKey, err)
	}
	return r.reply(ctx, in, r.profile.Describe(user), nil)
}

func (r *Router) setField(ctx context.Context, in Input) error {
	field, value, _ := strings.Cut(in.Args, " ")
	if field == "" || strings.TrimSpace(value) == "" {
		return r.reply(ctx, in, "Usage: /set <gender|weight|height|age|goal> <value>", nil)
	}
	if _, err := r.profile.EnsureUser(ctx, in.Actor.UserKey, in.Actor.DisplayName); err != nil {
		return fmt.Errorf("ensure user %d: %w", in.Actor.UserKey, err)
	}

	user, err := r.profile.SetField(ctx, in.Actor.UserKey, field, value)
	switch {
	case errors.Is(err, service.ErrInvalidValue), errors.Is(err, service.ErrUnknownField):
		return r.reply(ctx, in, capitalize(err.Error())+".", nil)
	case err != nil:
		return fmt.Errorf("set %s for user %d: %w", field, in.Actor.UserKey, err)
	}
	return r.reply(ctx, in, "Saved.\n\n"+r.profile.Describe(user), nil)
}

func (r *Router) submitFeedback(ctx context.Context, in Input) error {
	err := r.feedback.Submit(ctx, in.Actor.UserKey, in.Actor.DisplayName, in.Args)
	switch {
	case err == nil:
		return r.reply(ctx, in, "Thanks, your feedback was sent.", nil)
	case errors.Is(err, service.ErrEmptyFeedback):
		return r.reply(ctx, in, "Usage: /feedback <text>", nil)
	case errors.Is(err, service.ErrRateLimited):
		return r.reply(ctx, in, "Please wait a few seconds before sending more feedback.", nil)
	case errors.Is(err, service.ErrFeedbackDisabled):
		return r.reply(ctx, in, "Feedback is not available right now.", nil)
	}
	return err
}

func (r *Router) report(ctx context.Context, in Input) error {
	window, err := stats.ParseWindow(in.Args)
	if err != nil {
		return r.reply(ctx, in, "Usage: /report [weekly|monthly|alltime]", nil)
	}
	text, err := r.reports.Render(ctx, in.Actor.UserKey, window)
	if errors.Is(err, service.ErrUserNotFound) {
		text, err = service.FormatReport(&stats.Report{Window: window, Empty: true}), nil
	}
	if err != nil {
		return fmt.Errorf("report for user %d: %w", in.Actor.UserKey, err)
	}

	kb := service.ReportKeyboard(window)
	// Window switches update the report in place.
	if in.IsCallback() && in.MessageID != 0 {
		err := r.surface.EditText(ctx, in.Actor.ChatID, in.MessageID, text, kb)
		if err == nil || errors.Is(err, chat.ErrNotModified) {
			return nil
		}
		r.log.Debugf("bot: edit report message %d: %v", in.MessageID, err)
	}
	return r.reply(ctx, in, text, kb)
}

func (r *Router) reply(ctx context.Context, in Input, text string, kb *chat.Keyboard) error {
	_, err := r.surface.Send(ctx, in.Actor.ChatID, text, kb)
	return err
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
