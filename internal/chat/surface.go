// Package chat abstracts the messaging surface the bot renders into.
package chat

import (
	"context"
	"errors"
)

var (
	// ErrNotModified means an edit carried the content already shown.
	ErrNotModified = errors.New("message is not modified")
	// ErrMessageGone means the addressed message no longer exists or cannot be edited.
	ErrMessageGone = errors.New("message not found")
)

// Button is one keyboard button. Data is the callback payload of inline
// buttons and is ignored on reply keyboards.
type Button struct {
	Text string
	Data string
}

// Keyboard is a grid of buttons. Reply keyboards replace the user's input
// keyboard; inline keyboards attach to the message.
type Keyboard struct {
	Rows  [][]Button
	Reply bool
}

// Inline builds an inline keyboard from rows.
func Inline(rows ...[]Button) *Keyboard {
	return &Keyboard{Rows: rows}
}

// Row is a convenience for one keyboard row.
func Row(buttons ...Button) []Button {
	return buttons
}

// Grid lays buttons out n per row.
func Grid(buttons []Button, n int) [][]Button {
	var rows [][]Button
	for len(buttons) > 0 {
		k := n
		if len(buttons) < k {
			k = len(buttons)
		}
		rows = append(rows, buttons[:k])
		buttons = buttons[k:]
	}
	return rows
}

// Surface sends and mutates messages addressed by (chat, message) pairs.
// Edit and delete may fail with ErrNotModified or ErrMessageGone.
type Surface interface {
	Send(ctx context.Context, chatID int64, text string, kb *Keyboard) (int, error)
	EditText(ctx context.Context, chatID int64, messageID int, text string, kb *Keyboard) error
	EditMarkup(ctx context.Context, chatID int64, messageID int, kb *Keyboard) error
	Delete(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
