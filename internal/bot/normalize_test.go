package bot

import (
	"alcyxob/fitlog-bot/internal/session"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(from int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: from, FirstName: "Sam"},
		Chat:      &tgbotapi.Chat{ID: from * 10},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		n := strings.IndexByte(text, ' ')
		if n < 0 {
			n = len(text)
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: n}}
	}
	return tgbotapi.Update{UpdateID: 1, Message: msg}
}

func callback(from int64, data string, messageID int) tgbotapi.Update {
	return tgbotapi.Update{UpdateID: 2, CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-" + data,
		From:    &tgbotapi.User{ID: from, FirstName: "Sam"},
		Message: &tgbotapi.Message{MessageID: messageID, Chat: &tgbotapi.Chat{ID: from * 10}},
		Data:    data,
	}}
}

func TestNormalizeMessages(t *testing.T) {
	tests := []struct {
		text    string
		kind    session.ActionKind
		command string
		args    string
	}{
		{text: "80 8", kind: session.ActionText},
		{text: session.MenuTraining, kind: session.ActionStart},
		{text: session.MenuCardio, kind: session.ActionStartCardio},
		{text: session.MenuHistory, command: CommandReport},
		{text: session.MenuSettings, command: CommandProfile},
		{text: "/train", kind: session.ActionStart},
		{text: "/finish", kind: session.ActionFinishSession},
		{text: "/set weight 80", command: CommandSet, args: "weight 80"},
		{text: "/report monthly", command: CommandReport, args: "monthly"},
		{text: "/feedback great bot", command: CommandFeedback, args: "great bot"},
		{text: "/dance", command: CommandHelp},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			in, ok := Normalize(message(42, tt.text))
			require.True(t, ok)
			assert.Equal(t, int64(42), in.Actor.UserKey)
			assert.Equal(t, int64(420), in.Actor.ChatID)
			assert.False(t, in.IsCallback())
			if tt.kind != "" {
				require.NotNil(t, in.Action)
				assert.Equal(t, tt.kind, in.Action.Kind)
				assert.Empty(t, in.Command)
				return
			}
			assert.Nil(t, in.Action)
			assert.Equal(t, tt.command, in.Command)
			assert.Equal(t, tt.args, in.Args)
		})
	}
}

func TestNormalizeTextCarriesInput(t *testing.T) {
	in, ok := Normalize(message(42, "  75,5 8 "))
	require.True(t, ok)
	assert.Equal(t, "75,5 8", in.Action.Text)
	assert.Equal(t, "Sam", in.Action.DisplayName)
}

func TestNormalizeCallbacks(t *testing.T) {
	tests := []struct {
		data   string
		kind   session.ActionKind
		target string
	}{
		{"grp:g1", session.ActionSelectGroup, "g1"},
		{"ex:e1", session.ActionSelectExercise, "e1"},
		{"ex:repeat", session.ActionRepeat, ""},
		{"ex:finish", session.ActionFinishExercise, ""},
		{"back:groups", session.ActionBack, ""},
		{"workout:finish", session.ActionFinishSession, ""},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			in, ok := Normalize(callback(42, tt.data, 9))
			require.True(t, ok)
			require.NotNil(t, in.Action)
			assert.Equal(t, tt.kind, in.Action.Kind)
			assert.Equal(t, tt.target, in.Action.TargetID)
			assert.Equal(t, "cb-"+tt.data, in.CallbackID)
			assert.Equal(t, 9, in.MessageID)
		})
	}

	in, ok := Normalize(callback(42, "rp:alltime", 9))
	require.True(t, ok)
	assert.Equal(t, CommandReport, in.Command)
	assert.Equal(t, "alltime", in.Args)

	in, ok = Normalize(callback(42, "???", 9))
	require.True(t, ok, "unknown callbacks are still acknowledged")
	assert.Nil(t, in.Action)
	assert.Empty(t, in.Command)
}

func TestNormalizeIgnoresOtherUpdates(t *testing.T) {
	_, ok := Normalize(tgbotapi.Update{UpdateID: 3})
	assert.False(t, ok)

	upd := message(42, "")
	_, ok = Normalize(upd)
	assert.False(t, ok)
}
