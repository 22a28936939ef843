// Package chattest provides an in-memory chat.Surface for tests.
package chattest

import (
	"alcyxob/fitlog-bot/internal/chat"
	"context"
	"sync"
)

// Message is the recorder's view of one live message.
type Message struct {
	ChatID   int64
	ID       int
	Text     string
	Keyboard *chat.Keyboard
	Deleted  bool
}

// Recorder keeps every message in memory and can be told to fail calls.
type Recorder struct {
	mu       sync.Mutex
	nextID   int
	messages map[int]*Message
	order    []int

	Sends, Edits, MarkupEdits, Deletes int
	Callbacks                          []string

	// Failure injection, consulted on every call.
	FailEdit   error
	FailDelete error
	FailSend   error
}

func NewRecorder() *Recorder {
	return &Recorder{messages: make(map[int]*Message)}
}

func (r *Recorder) Send(_ context.Context, chatID int64, text string, kb *chat.Keyboard) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailSend != nil {
		return 0, r.FailSend
	}
	r.nextID++
	r.Sends++
	r.messages[r.nextID] = &Message{ChatID: chatID, ID: r.nextID, Text: text, Keyboard: kb}
	r.order = append(r.order, r.nextID)
	return r.nextID, nil
}

func (r *Recorder) EditText(_ context.Context, chatID int64, messageID int, text string, kb *chat.Keyboard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailEdit != nil {
		return r.FailEdit
	}
	m, ok := r.messages[messageID]
	if !ok || m.Deleted || m.ChatID != chatID {
		return chat.ErrMessageGone
	}
	if m.Text == text && sameKeyboard(m.Keyboard, kb) {
		return chat.ErrNotModified
	}
	r.Edits++
	m.Text = text
	m.Keyboard = kb
	return nil
}

func (r *Recorder) EditMarkup(_ context.Context, chatID int64, messageID int, kb *chat.Keyboard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailEdit != nil {
		return r.FailEdit
	}
	m, ok := r.messages[messageID]
	if !ok || m.Deleted || m.ChatID != chatID {
		return chat.ErrMessageGone
	}
	r.MarkupEdits++
	m.Keyboard = kb
	return nil
}

func (r *Recorder) Delete(_ context.Context, chatID int64, messageID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailDelete != nil {
		return r.FailDelete
	}
	m, ok := r.messages[messageID]
	if !ok || m.Deleted || m.ChatID != chatID {
		return chat.ErrMessageGone
	}
	r.Deletes++
	m.Deleted = true
	return nil
}

func (r *Recorder) AnswerCallback(_ context.Context, callbackID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Callbacks = append(r.Callbacks, callbackID)
	return nil
}

// Get returns a copy of the message with the given ID.
func (r *Recorder) Get(id int) (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return Message{}, false
	}
	return *m, true
}

// Live returns the messages that have not been deleted, oldest first.
func (r *Recorder) Live() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Message
	for _, id := range r.order {
		if m := r.messages[id]; !m.Deleted {
			out = append(out, *m)
		}
	}
	return out
}

// Last returns the most recently sent message.
func (r *Recorder) Last() Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.order) == 0 {
		return Message{}
	}
	return *r.messages[r.order[len(r.order)-1]]
}

// Forget removes a message as if the user deleted it.
func (r *Recorder) Forget(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.messages[id]; ok {
		m.Deleted = true
	}
}

func sameKeyboard(a, b *chat.Keyboard) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Reply != b.Reply || len(a.Rows) != len(b.Rows) {
		return false
	}
	for i := range a.Rows {
		if len(a.Rows[i]) != len(b.Rows[i]) {
			return false
		}
		for j := range a.Rows[i] {
			if a.Rows[i][j] != b.Rows[i][j] {
				return false
			}
		}
	}
	return true
}
