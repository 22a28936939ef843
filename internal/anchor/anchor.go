// Package anchor keeps one live message per screen class and updates it in place.
package anchor

import (
	"alcyxob/fitlog-bot/internal/chat"
	"alcyxob/fitlog-bot/internal/logging"
	"alcyxob/fitlog-bot/internal/observability"
	"context"
	"fmt"
)

// Screen is a class of UI surface. Each class has at most one live anchor.
type Screen string

const (
	ScreenGroups    Screen = "groups"
	ScreenExercises Screen = "exercises"
	ScreenCard      Screen = "card"
)

// IsList reports whether the screen is a selection list. Stale lists are
// deleted; the card is kept as a record of the logged sets.
func (s Screen) IsList() bool {
	return s == ScreenGroups || s == ScreenExercises
}

// Anchors maps a screen class to its live message ID. It belongs to one
// user's session state and is mutated only under that user's lock.
type Anchors map[Screen]int

type Manager struct {
	surface chat.Surface
	log     logging.Logger
}

func NewManager(surface chat.Surface, log logging.Logger) *Manager {
	return &Manager{surface: surface, log: log}
}

// Render shows content on the screen's anchor. It edits the live anchor in
// place and falls back to sending a new message when the edit fails for any
// reason. A replaced list anchor is deleted afterwards. The returned error
// is non-nil only when no message could be shown at all.
func (m *Manager) Render(ctx context.Context, chatID int64, anchors Anchors, screen Screen, text string, kb *chat.Keyboard) (int, error) {
	prev, hasPrev := anchors[screen]
	if hasPrev {
		err := m.surface.EditText(ctx, chatID, prev, text, kb)
		if err == nil {
			return prev, nil
		}
		observability.RecordAnchorFallback(string(screen))
		m.log.Debugf("anchor: edit %s message %d in chat %d failed, sending new: %v", screen, prev, chatID, err)
	}

	id, err := m.surface.Send(ctx, chatID, text, kb)
	if err != nil {
		return 0, fmt.Errorf("send %s: %w", screen, err)
	}
	anchors[screen] = id

	if hasPrev && screen.IsList() && prev != id {
		m.bestEffortDelete(ctx, chatID, screen, prev)
	}
	return id, nil
}

// Retire forgets the screen's anchor. Lists are deleted; the card keeps its
// text and loses its keyboard so stale buttons cannot be pressed.
func (m *Manager) Retire(ctx context.Context, chatID int64, anchors Anchors, screen Screen) {
	id, ok := anchors[screen]
	if !ok {
		return
	}
	delete(anchors, screen)

	if screen.IsList() {
		m.bestEffortDelete(ctx, chatID, screen, id)
		return
	}
	if err := m.surface.EditMarkup(ctx, chatID, id, nil); err != nil {
		observability.RecordAnchorCleanupFailure(string(screen))
		m.log.Debugf("anchor: strip keyboard of %s message %d failed: %v", screen, id, err)
	}
}

// RetireAll retires every live anchor.
func (m *Manager) RetireAll(ctx context.Context, chatID int64, anchors Anchors) {
	for _, screen := range []Screen{ScreenGroups, ScreenExercises, ScreenCard} {
		m.Retire(ctx, chatID, anchors, screen)
	}
}

func (m *Manager) bestEffortDelete(ctx context.Context, chatID int64, screen Screen, id int) {
	if err := m.surface.Delete(ctx, chatID, id); err != nil {
		observability.RecordAnchorCleanupFailure(string(screen))
		m.log.Debugf("anchor: delete %s message %d failed: %v", screen, id, err)
	}
}
