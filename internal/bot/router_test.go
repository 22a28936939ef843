package bot

import (
	"alcyxob/fitlog-bot/internal/anchor"
	"alcyxob/fitlog-bot/internal/chat"
	"alcyxob/fitlog-bot/internal/chat/chattest"
	"alcyxob/fitlog-bot/internal/clock"
	"alcyxob/fitlog-bot/internal/domain"
	"alcyxob/fitlog-bot/internal/logging"
	"alcyxob/fitlog-bot/internal/reaper"
	"alcyxob/fitlog-bot/internal/repository"
	"alcyxob/fitlog-bot/internal/repository/memory"
	"alcyxob/fitlog-bot/internal/service"
	"alcyxob/fitlog-bot/internal/session"
	"alcyxob/fitlog-bot/internal/stats"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t       *testing.T
	ctx     context.Context
	store   *repository.Store
	surface *chattest.Recorder
	router  *Router
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	_, err := repository.SeedCatalog(ctx, store, domain.DefaultCatalog())
	require.NoError(t, err)

	log := logging.NewNop()
	surface := chattest.NewRecorder()
	clk := clock.NewManual(time.Date(2025, time.May, 1, 18, 0, 0, 0, time.UTC))
	ctrl := session.NewController(session.Deps{
		Store:   store,
		Anchors: anchor.NewManager(surface, log),
		Reaper:  reaper.New(store.Sessions, store.SetRecords, store.Users, clk, 0, nil, log),
		Surface: surface,
		Clock:   clk,
		Log:     log,
	})
	engine := stats.NewEngine(store.Sessions, store.SetRecords, store.Exercises, clk)
	router := NewRouter(ctrl,
		service.NewProfileService(store.Users, clk),
		service.NewFeedbackService(surface, 0, 0, clk),
		service.NewReportService(store.Users, engine),
		surface, log)
	return &harness{t: t, ctx: ctx, store: store, surface: surface, router: router}
}

func (h *harness) send(text string) chattest.Message {
	h.t.Helper()
	require.NoError(h.t, h.router.HandleUpdate(h.ctx, message(42, text)))
	return h.surface.Last()
}

func (h *harness) press(data string, messageID int) {
	h.t.Helper()
	require.NoError(h.t, h.router.HandleUpdate(h.ctx, callback(42, data, messageID)))
}

// button finds a button by label prefix on the newest live message.
func (h *harness) button(prefix string) (chat.Button, int) {
	h.t.Helper()
	live := h.surface.Live()
	require.NotEmpty(h.t, live)
	msg := live[len(live)-1]
	require.NotNil(h.t, msg.Keyboard)
	for _, row := range msg.Keyboard.Rows {
		for _, b := range row {
			if strings.HasPrefix(b.Text, prefix) {
				return b, msg.ID
			}
		}
	}
	h.t.Fatalf("no %q button on %q", prefix, msg.Text)
	return chat.Button{}, 0
}

func TestOnboardingThenWorkout(t *testing.T) {
	h := newHarness(t)

	welcome := h.send("/start")
	assert.Contains(t, welcome.Text, "Still needed before logging: gender, weight, height, age")
	require.NotNil(t, welcome.Keyboard)
	assert.True(t, welcome.Keyboard.Reply)

	assert.Contains(t, h.send("Training").Text, "Complete your profile")

	assert.Contains(t, h.send("/set weight 500").Text, "Invalid profile value: weight must be between 30 and 300 kg")
	for _, cmd := range []string{"/set gender male", "/set weight 82.5", "/set height 181", "/set age 34"} {
		assert.Contains(t, h.send(cmd).Text, "Saved.", cmd)
	}

	assert.Equal(t, "Pick a muscle group:", h.send("Training").Text)
	chest, listID := h.button("Chest")
	h.press(chest.Data, listID)
	bench, listID := h.button("Bench press")
	h.press(bench.Data, listID)

	h.send("80 8")
	repeat, cardID := h.button("Repeat 80 kg × 8")
	h.press(repeat.Data, cardID)
	card, ok := h.surface.Get(cardID)
	require.True(t, ok)
	assert.Contains(t, card.Text, "Sets: 2")

	finishEx, _ := h.button("Finish exercise")
	h.press(finishEx.Data, cardID)
	finish, listID := h.button("Finish workout")
	h.press(finish.Data, listID)

	summary := h.surface.Last()
	assert.Contains(t, summary.Text, "Workout finished")
	assert.Contains(t, summary.Text, "Sets: 2")
	assert.Contains(t, summary.Text, "Volume: 1280 kg")

	// Every callback was acknowledged.
	assert.Len(t, h.surface.Callbacks, 5)
}

func TestReportWindowSwitchEditsInPlace(t *testing.T) {
	h := newHarness(t)
	h.send("/start")

	report := h.send("History")
	assert.Contains(t, report.Text, "Last 7 days")
	assert.Contains(t, report.Text, "No data for this period.")
	sends := h.surface.Sends

	h.press("rp:alltime", report.ID)
	edited, ok := h.surface.Get(report.ID)
	require.True(t, ok)
	assert.Contains(t, edited.Text, "All time")
	assert.Equal(t, sends, h.surface.Sends, "window switch must not send a new message")

	assert.Contains(t, h.send("/report yearly").Text, "Usage: /report")
}

func TestFeedbackWithoutInbox(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.send("/feedback hello").Text, "not available")
	assert.Contains(t, h.send("/dance").Text, "/report")
}
