package anchor

import (
	"alcyxob/fitlog-bot/internal/chat"
	"alcyxob/fitlog-bot/internal/chat/chattest"
	"alcyxob/fitlog-bot/internal/logging"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatID = int64(100)

func newManager() (*Manager, *chattest.Recorder) {
	rec := chattest.NewRecorder()
	return NewManager(rec, logging.NewNop()), rec
}

func TestRenderSendsThenEditsInPlace(t *testing.T) {
	m, rec := newManager()
	anchors := Anchors{}
	ctx := context.Background()

	id, err := m.Render(ctx, chatID, anchors, ScreenCard, "Sets: 0", nil)
	require.NoError(t, err)
	assert.Equal(t, id, anchors[ScreenCard])

	again, err := m.Render(ctx, chatID, anchors, ScreenCard, "Sets: 1", nil)
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Equal(t, 1, rec.Sends)
	assert.Equal(t, 1, rec.Edits)

	msg, _ := rec.Get(id)
	assert.Equal(t, "Sets: 1", msg.Text)
}

func TestRenderFallsBackWhenMessageIsGone(t *testing.T) {
	m, rec := newManager()
	anchors := Anchors{}
	ctx := context.Background()

	first, err := m.Render(ctx, chatID, anchors, ScreenCard, "Sets: 0", nil)
	require.NoError(t, err)
	rec.Forget(first)

	second, err := m.Render(ctx, chatID, anchors, ScreenCard, "Sets: 1", nil)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, second, anchors[ScreenCard])
	assert.Equal(t, 0, rec.Deletes, "the card is never deleted")
}

func TestRenderFallsBackOnUnchangedContent(t *testing.T) {
	m, rec := newManager()
	anchors := Anchors{}
	ctx := context.Background()
	kb := chat.Inline(chat.Row(chat.Button{Text: "Chest", Data: "grp:1"}))

	first, err := m.Render(ctx, chatID, anchors, ScreenGroups, "Pick a group", kb)
	require.NoError(t, err)
	second, err := m.Render(ctx, chatID, anchors, ScreenGroups, "Pick a group", kb)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	old, _ := rec.Get(first)
	assert.True(t, old.Deleted, "the replaced list is deleted")
	assert.Len(t, rec.Live(), 1)
}

func TestListDeleteFailureIsSwallowed(t *testing.T) {
	m, rec := newManager()
	anchors := Anchors{}
	ctx := context.Background()

	_, err := m.Render(ctx, chatID, anchors, ScreenExercises, "list", nil)
	require.NoError(t, err)
	rec.FailEdit = errors.New("boom")
	rec.FailDelete = errors.New("boom")

	id, err := m.Render(ctx, chatID, anchors, ScreenExercises, "list 2", nil)
	require.NoError(t, err)
	assert.Equal(t, id, anchors[ScreenExercises])
}

func TestRenderReportsSendFailure(t *testing.T) {
	m, rec := newManager()
	rec.FailSend = errors.New("offline")
	anchors := Anchors{}

	_, err := m.Render(context.Background(), chatID, anchors, ScreenGroups, "x", nil)
	require.Error(t, err)
	assert.Empty(t, anchors)
}

func TestRetire(t *testing.T) {
	m, rec := newManager()
	anchors := Anchors{}
	ctx := context.Background()
	kb := chat.Inline(chat.Row(chat.Button{Text: "Repeat", Data: "ex:repeat"}))

	list, _ := m.Render(ctx, chatID, anchors, ScreenExercises, "list", nil)
	card, _ := m.Render(ctx, chatID, anchors, ScreenCard, "card", kb)

	m.RetireAll(ctx, chatID, anchors)
	assert.Empty(t, anchors)

	gone, _ := rec.Get(list)
	assert.True(t, gone.Deleted)
	kept, _ := rec.Get(card)
	assert.False(t, kept.Deleted)
	assert.Nil(t, kept.Keyboard)

	// Retiring again is a no-op.
	m.Retire(ctx, chatID, anchors, ScreenCard)
	assert.Equal(t, 1, rec.MarkupEdits)
}
