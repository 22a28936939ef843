// Package session implements the logging conversation as a per-user state
// machine: Idle, GroupSelection, ExerciseSelection, SetLogging and the
// terminal Completed result.
package session

import (
	"alcyxob/fitlog-bot/internal/anchor"
	"alcyxob/fitlog-bot/internal/chat"
	"alcyxob/fitlog-bot/internal/clock"
	"alcyxob/fitlog-bot/internal/domain"
	"alcyxob/fitlog-bot/internal/events"
	"alcyxob/fitlog-bot/internal/logging"
	"alcyxob/fitlog-bot/internal/observability"
	"alcyxob/fitlog-bot/internal/parser"
	"alcyxob/fitlog-bot/internal/reaper"
	"alcyxob/fitlog-bot/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"
)

// Guidance errors. The controller has already told the user what to do
// when it returns one of these.
var (
	ErrIncompleteProfile   = errors.New("profile is incomplete")
	ErrLostContext         = errors.New("no open session")
	ErrFinishExerciseFirst = errors.New("finish the current exercise first")
	ErrNoPreviousSet       = errors.New("no previous set to repeat")
	ErrNoExerciseSelected  = errors.New("no exercise selected")
	ErrUnknownTarget       = errors.New("unknown group or exercise")
)

// IsGuidance reports whether err was already answered with a user-facing message.
func IsGuidance(err error) bool {
	var rejection *parser.RejectionError
	return errors.Is(err, ErrIncompleteProfile) ||
		errors.Is(err, ErrLostContext) ||
		errors.Is(err, ErrFinishExerciseFirst) ||
		errors.Is(err, ErrNoPreviousSet) ||
		errors.Is(err, ErrNoExerciseSelected) ||
		errors.Is(err, ErrUnknownTarget) ||
		errors.As(err, &rejection)
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Store     *repository.Store
	Anchors   *anchor.Manager
	Reaper    *reaper.Reaper
	Surface   chat.Surface
	Publisher events.Publisher
	Clock     clock.Clock
	Log       logging.Logger
}

type Controller struct {
	store     *repository.Store
	anchors   *anchor.Manager
	reaper    *reaper.Reaper
	surface   chat.Surface
	publisher events.Publisher
	clock     clock.Clock
	log       logging.Logger
	states    *StateStore
}

func NewController(d Deps) *Controller {
	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}
	if d.Clock == nil {
		d.Clock = clock.System{}
	}
	return &Controller{
		store:     d.Store,
		anchors:   d.Anchors,
		reaper:    d.Reaper,
		surface:   d.Surface,
		publisher: d.Publisher,
		clock:     d.Clock,
		log:       d.Log,
		states:    NewStateStore(),
	}
}

// turn is the context of one action after the guard has run.
type turn struct {
	who   Actor
	user  *domain.User
	state *State // nil when the user has no live state
}

// Handle dispatches an action. Guidance errors are swallowed since the user
// has already been answered; anything else is returned for logging.
func (c *Controller) Handle(ctx context.Context, a Action) error {
	observability.RecordAction(string(a.Kind))

	var err error
	switch a.Kind {
	case ActionStart:
		err = c.StartSession(ctx, a.Actor)
	case ActionStartCardio:
		err = c.StartCardio(ctx, a.Actor)
	case ActionSelectGroup:
		err = c.SelectGroup(ctx, a.Actor, a.TargetID)
	case ActionSelectExercise:
		err = c.SelectExercise(ctx, a.Actor, a.TargetID)
	case ActionText:
		err = c.LogSet(ctx, a.Actor, a.Text)
	case ActionRepeat:
		err = c.RepeatLast(ctx, a.Actor)
	case ActionFinishExercise:
		err = c.FinishExercise(ctx, a.Actor)
	case ActionBack:
		err = c.BackToGroups(ctx, a.Actor)
	case ActionFinishSession:
		_, err = c.FinishSession(ctx, a.Actor)
	default:
		return fmt.Errorf("unsupported action %q", a.Kind)
	}
	if err != nil && !IsGuidance(err) {
		return fmt.Errorf("%s for user %d: %w", a.Kind, a.UserKey, err)
	}
	return nil
}

// Phase returns the user's current phase, Idle when there is no state.
func (c *Controller) Phase(userKey int64) Phase {
	if st := c.states.Get(userKey); st != nil {
		return st.Phase
	}
	return Idle{}
}

// Active reports whether the user has live session state.
func (c *Controller) Active(userKey int64) bool {
	return c.states.Get(userKey) != nil
}

// StartSession opens a new session and shows the group list.
func (c *Controller) StartSession(ctx context.Context, who Actor) error {
	unlock := c.states.Lock(who.UserKey)
	defer unlock()

	t, err := c.start(ctx, who)
	if err != nil {
		return err
	}
	return c.showGroups(ctx, t.state)
}

// StartCardio opens a new session straight on the cardio machine list.
func (c *Controller) StartCardio(ctx context.Context, who Actor) error {
	unlock := c.states.Lock(who.UserKey)
	defer unlock()

	t, err := c.start(ctx, who)
	if err != nil {
		return err
	}
	group, err := c.store.MuscleGroups.GetBySlug(ctx, domain.CardioGroupSlug)
	if errors.Is(err, repository.ErrNotFound) {
		return c.showGroups(ctx, t.state)
	}
	if err != nil {
		return fmt.Errorf("cardio group: %w", err)
	}
	return c.showExercises(ctx, t.state, group)
}

// SelectGroup shows the exercises of a group. Any unsent draft is discarded.
func (c *Controller) SelectGroup(ctx context.Context, who Actor, groupID string) error {
	unlock := c.states.Lock(who.UserKey)
	defer unlock()

	t, err := c.begin(ctx, who)
	if err != nil {
		return err
	}
	st, err := c.requireState(ctx, t)
	if err != nil {
		return err
	}

	group, err := c.store.MuscleGroups.GetByID(ctx, groupID)
	if errors.Is(err, repository.ErrNotFound) {
		c.notify(ctx, who.ChatID, msgUnknownTarget, nil)
		return ErrUnknownTarget
	}
	if err != nil {
		return fmt.Errorf("group %s: %w", groupID, err)
	}
	return c.showExercises(ctx, st, group)
}

// SelectExercise opens the logging card for an exercise.
func (c *Controller) SelectExercise(ctx context.Context, who Actor, exerciseID string) error {
	unlock := c.states.Lock(who.UserKey)
	defer unlock()

	t, err := c.begin(ctx, who)
	if err != nil {
		return err
	}
	st, err := c.requireState(ctx, t)
	if err != nil {
		return err
	}

	ex, err := c.store.Exercises.GetByID(ctx, exerciseID)
	if errors.Is(err, repository.ErrNotFound) {
		c.notify(ctx, who.ChatID, msgUnknownTarget, nil)
		return ErrUnknownTarget
	}
	if err != nil {
		return fmt.Errorf("exercise %s: %w", exerciseID, err)
	}

	sl := SetLogging{GroupID: ex.GroupID, Exercise: *ex}
	if es, ok := st.Phase.(ExerciseSelection); ok {
		sl.GroupID = es.GroupID
	}

	latest, err := c.store.SetRecords.LatestForExercise(ctx, st.SessionID, ex.ID)
	switch {
	case err == nil:
		last := latest.Measurement.Clone()
		sl.Last = &last
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("latest set of %s: %w", ex.ID, err)
	}
	if sl.SavedSets, err = c.store.SetRecords.CountForExercise(ctx, st.SessionID, ex.ID); err != nil {
		return fmt.Errorf("count sets of %s: %w", ex.ID, err)
	}

	st.Phase = sl
	return c.showCard(ctx, st, sl, "")
}

// LogSet parses text against the selected exercise and saves it as a new
// set. Rejected input leaves the state untouched and shows the hint again.
func (c *Controller) LogSet(ctx context.Context, who Actor, text string) error {
	unlock := c.states.Lock(who.UserKey)
	defer unlock()

	t, err := c.begin(ctx, who)
	if err != nil {
		return err
	}
	st, err := c.requireState(ctx, t)
	if err != nil {
		return err
	}
	sl, ok := st.Phase.(SetLogging)
	if !ok {
		c.notify(ctx, who.ChatID, msgPickExercise, nil)
		return ErrNoExerciseSelected
	}

	m, err := parser.Parse(&sl.Exercise, text)
	if err != nil {
		var rejection *parser.RejectionError
		if errors.As(err, &rejection) {
			observability.RecordParseRejection(string(rejection.Grammar), rejectionReason(rejection))
		}
		if rerr := c.showCard(ctx, st, sl, rejectionNote(text, err)); rerr != nil {
			return rerr
		}
		return err
	}
	return c.saveSet(ctx, t, st, sl, m)
}

// RepeatLast saves a copy of the last set of the current exercise.
func (c *Controller) RepeatLast(ctx context.Context, who Actor) error {
	unlock := c.states.Lock(who.UserKey)
	defer unlock()

	t, err := c.begin(ctx, who)
	if err != nil {
		return err
	}
	st, err := c.requireState(ctx, t)
	if err != nil {
		return err
	}
	sl, ok := st.Phase.(SetLogging)
	if !ok {
		c.notify(ctx, who.ChatID, msgPickExercise, nil)
		return ErrNoExerciseSelected
	}
	if sl.Last == nil {
		if err := c.showCard(ctx, st, sl, msgNothingToRepeat); err != nil {
			return err
		}
		return ErrNoPreviousSet
	}
	return c.saveSet(ctx, t, st, sl, sl.Last.Clone())
}

// FinishExercise leaves the card and goes back to the group's exercise list.
func (c *Controller) FinishExercise(ctx context.Context, who Actor) error {
	unlock := c.states.Lock(who.UserKey)
	defer unlock()

	t, err := c.begin(ctx, who)
	if err != nil {
		return err
	}
	st, err := c.requireState(ctx, t)
	if err != nil {
		return err
	}

	var groupID string
	switch p := st.Phase.(type) {
	case SetLogging:
		groupID = p.GroupID
	case ExerciseSelection:
		groupID = p.GroupID
	default:
		c.notify(ctx, who.ChatID, msgPickExercise, nil)
		return ErrNoExerciseSelected
	}
	if groupID == "" {
		return c.showGroups(ctx, st)
	}

	group, err := c.store.MuscleGroups.GetByID(ctx, groupID)
	if errors.Is(err, repository.ErrNotFound) {
		return c.showGroups(ctx, st)
	}
	if err != nil {
		return fmt.Errorf("group %s: %w", groupID, err)
	}
	return c.showExercises(ctx, st, group)
}

// BackToGroups returns from an exercise list to the group list.
func (c *Controller) BackToGroups(ctx context.Context, who Actor) error {
	unlock := c.states.Lock(who.UserKey)
	defer unlock()

	t, err := c.begin(ctx, who)
	if err != nil {
		return err
	}
	st, err := c.requireState(ctx, t)
	if err != nil {
		return err
	}
	if _, ok := st.Phase.(SetLogging); ok {
		c.notify(ctx, who.ChatID, msgFinishExerciseFirst, nil)
		return ErrFinishExerciseFirst
	}
	return c.showGroups(ctx, st)
}

// FinishSession completes the session and shows its totals. It is refused
// while an exercise card is open.
func (c *Controller) FinishSession(ctx context.Context, who Actor) (*Completed, error) {
	unlock := c.states.Lock(who.UserKey)
	defer unlock()

	t, err := c.begin(ctx, who)
	if err != nil {
		return nil, err
	}
	st, err := c.requireState(ctx, t)
	if err != nil {
		return nil, err
	}
	if _, ok := st.Phase.(SetLogging); ok {
		c.notify(ctx, who.ChatID, msgFinishExerciseFirst, nil)
		return nil, ErrFinishExerciseFirst
	}

	records, err := c.store.SetRecords.ListBySession(ctx, st.SessionID)
	if err != nil {
		return nil, fmt.Errorf("records of session %s: %w", st.SessionID, err)
	}
	totals := domain.Totals(records)

	now := c.clock.Now().UTC()
	err = c.store.Sessions.MarkCompleted(ctx, st.SessionID, now)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.log.Warnf("session: %s was already closed when finishing", st.SessionID)
	case err != nil:
		return nil, fmt.Errorf("complete session %s: %w", st.SessionID, err)
	default:
		observability.RecordSessionClosed(string(domain.CloseFinished))
		c.publish(ctx, t, st.SessionID, domain.CloseFinished, totals, now)
	}

	c.anchors.RetireAll(ctx, st.ChatID, st.Anchors)
	c.states.Clear(who.UserKey)
	c.notify(ctx, who.ChatID, summaryText(totals), MainMenu())

	return &Completed{SessionID: st.SessionID, Totals: totals}, nil
}

// begin resolves the user and runs the inactivity guard. State whose session
// is no longer open is dropped and the user is told about it.
func (c *Controller) begin(ctx context.Context, who Actor) (*turn, error) {
	user, err := c.resolveUser(ctx, who)
	if err != nil {
		return nil, err
	}
	if _, err := c.reaper.Check(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("inactivity check: %w", err)
	}

	t := &turn{who: who, user: user, state: c.states.Get(who.UserKey)}
	if t.state == nil {
		return t, nil
	}

	session, err := c.store.Sessions.GetByID(ctx, t.state.SessionID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("session %s: %w", t.state.SessionID, err)
	}
	if err == nil && session.IsOpen() {
		return t, nil
	}
	c.expire(ctx, t)
	return t, nil
}

// expire drops the state of a session that was closed behind the user's back.
func (c *Controller) expire(ctx context.Context, t *turn) {
	c.anchors.RetireAll(ctx, t.state.ChatID, t.state.Anchors)
	c.states.Clear(t.who.UserKey)
	t.state = nil
	c.notify(ctx, t.who.ChatID, msgExpired, MainMenu())
}

// start is the shared part of StartSession and StartCardio.
func (c *Controller) start(ctx context.Context, who Actor) (*turn, error) {
	t, err := c.begin(ctx, who)
	if err != nil {
		return nil, err
	}
	if !t.user.IsProfileComplete() {
		c.notify(ctx, who.ChatID, incompleteProfileText(t.user), nil)
		return nil, ErrIncompleteProfile
	}

	if t.state != nil {
		c.anchors.RetireAll(ctx, t.state.ChatID, t.state.Anchors)
		c.states.Clear(who.UserKey)
	}
	if err := c.supersede(ctx, t); err != nil {
		return nil, err
	}

	session := &domain.Session{UserID: t.user.ID, CreatedAt: c.clock.Now().UTC()}
	id, err := c.store.Sessions.Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	t.state = newState(id, who.ChatID)
	c.states.Put(who.UserKey, t.state)
	c.log.Debugf("session: started %s for user %s", id, t.user.ID)
	return t, nil
}

// supersede closes an open session left behind before a new one starts.
func (c *Controller) supersede(ctx context.Context, t *turn) error {
	prev, err := c.store.Sessions.LatestOpenByUser(ctx, t.user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("latest open session: %w", err)
	}

	records, err := c.store.SetRecords.ListBySession(ctx, prev.ID)
	if err != nil {
		return fmt.Errorf("records of session %s: %w", prev.ID, err)
	}
	now := c.clock.Now().UTC()
	err = c.store.Sessions.MarkCompleted(ctx, prev.ID, now)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("complete session %s: %w", prev.ID, err)
	}
	observability.RecordSessionClosed(string(domain.CloseSuperseded))
	c.publish(ctx, t, prev.ID, domain.CloseSuperseded, domain.Totals(records), now)
	return nil
}

// requireState returns the live state, recovering it from the user's latest
// open session when it was lost.
func (c *Controller) requireState(ctx context.Context, t *turn) (*State, error) {
	if t.state != nil {
		return t.state, nil
	}

	session, err := c.store.Sessions.LatestOpenByUser(ctx, t.user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		c.notify(ctx, t.who.ChatID, msgNoOpenSession, MainMenu())
		return nil, ErrLostContext
	}
	if err != nil {
		return nil, fmt.Errorf("latest open session: %w", err)
	}

	c.log.Infof("session: recovered %s for user %s", session.ID, t.user.ID)
	t.state = newState(session.ID, t.who.ChatID)
	c.states.Put(t.who.UserKey, t.state)
	return t.state, nil
}

func (c *Controller) resolveUser(ctx context.Context, who Actor) (*domain.User, error) {
	user, err := c.store.Users.GetByTelegramID(ctx, who.UserKey)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("user %d: %w", who.UserKey, err)
	}

	now := c.clock.Now().UTC()
	user = &domain.User{TelegramID: who.UserKey, Name: who.DisplayName, CreatedAt: now, UpdatedAt: now}
	id, err := c.store.Users.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		return c.store.Users.GetByTelegramID(ctx, who.UserKey)
	}
	if err != nil {
		return nil, fmt.Errorf("create user %d: %w", who.UserKey, err)
	}
	user.ID = id
	return user, nil
}

func (c *Controller) saveSet(ctx context.Context, t *turn, st *State, sl SetLogging, m domain.Measurement) error {
	// The sweeper does not take the user lock and may have closed the
	// session since begin. A close landing after this read still slips through.
	session, err := c.store.Sessions.GetByID(ctx, st.SessionID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("session %s: %w", st.SessionID, err)
	}
	if err != nil || !session.IsOpen() {
		c.expire(ctx, t)
		return ErrLostContext
	}

	record := &domain.SetRecord{
		SessionID:   st.SessionID,
		ExerciseID:  sl.Exercise.ID,
		UserID:      t.user.ID,
		Kind:        sl.Exercise.Kind,
		Measurement: m,
		CreatedAt:   c.clock.Now().UTC(),
	}
	if _, err := c.store.SetRecords.Create(ctx, record); err != nil {
		return fmt.Errorf("save set: %w", err)
	}
	observability.RecordSetRecord(string(sl.Exercise.Kind))

	last := m.Clone()
	sl.Last = &last
	sl.SavedSets++
	st.Phase = sl
	return c.showCard(ctx, st, sl, "")
}

func (c *Controller) showGroups(ctx context.Context, st *State) error {
	groups, err := c.store.MuscleGroups.List(ctx)
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}
	text, kb := groupsView(groups)
	if _, err := c.anchors.Render(ctx, st.ChatID, st.Anchors, anchor.ScreenGroups, text, kb); err != nil {
		return err
	}
	c.anchors.Retire(ctx, st.ChatID, st.Anchors, anchor.ScreenExercises)
	c.anchors.Retire(ctx, st.ChatID, st.Anchors, anchor.ScreenCard)
	st.Phase = GroupSelection{}
	return nil
}

func (c *Controller) showExercises(ctx context.Context, st *State, group *domain.MuscleGroup) error {
	kind := domain.KindStrength
	if group.IsCardio() {
		kind = domain.KindCardio
	}
	exercises, err := c.store.Exercises.ListByGroup(ctx, group.ID, kind)
	if err != nil {
		return fmt.Errorf("exercises of %s: %w", group.Slug, err)
	}
	text, kb := exercisesView(group, exercises)
	if _, err := c.anchors.Render(ctx, st.ChatID, st.Anchors, anchor.ScreenExercises, text, kb); err != nil {
		return err
	}
	c.anchors.Retire(ctx, st.ChatID, st.Anchors, anchor.ScreenGroups)
	c.anchors.Retire(ctx, st.ChatID, st.Anchors, anchor.ScreenCard)
	st.Phase = ExerciseSelection{GroupID: group.ID}
	return nil
}

func (c *Controller) showCard(ctx context.Context, st *State, sl SetLogging, note string) error {
	text, kb := cardView(sl, note)
	if _, err := c.anchors.Render(ctx, st.ChatID, st.Anchors, anchor.ScreenCard, text, kb); err != nil {
		return err
	}
	c.anchors.Retire(ctx, st.ChatID, st.Anchors, anchor.ScreenGroups)
	c.anchors.Retire(ctx, st.ChatID, st.Anchors, anchor.ScreenExercises)
	return nil
}

// notify sends a standalone message. Failures are logged only.
func (c *Controller) notify(ctx context.Context, chatID int64, text string, kb *chat.Keyboard) {
	if _, err := c.surface.Send(ctx, chatID, text, kb); err != nil {
		c.log.Warnf("session: notify chat %d: %v", chatID, err)
	}
}

func (c *Controller) publish(ctx context.Context, t *turn, sessionID string, reason domain.CloseReason, totals domain.SessionTotals, at time.Time) {
	evt := events.SessionCompleted{
		SessionID:   sessionID,
		UserID:      t.user.ID,
		TelegramID:  t.user.TelegramID,
		Reason:      string(reason),
		SetCount:    totals.SetCount,
		VolumeKg:    totals.VolumeKg,
		CompletedAt: at,
	}
	if err := c.publisher.PublishSessionCompleted(ctx, evt); err != nil {
		c.log.Warnf("session: publish close of %s: %v", sessionID, err)
	}
}

func rejectionReason(r *parser.RejectionError) string {
	switch {
	case errors.Is(r, parser.ErrNonPositive):
		return "non_positive"
	case errors.Is(r, parser.ErrOutOfRange):
		return "out_of_range"
	}
	return "malformed"
}
