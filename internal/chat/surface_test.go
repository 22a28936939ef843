package chat

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestGrid(t *testing.T) {
	b := func(s string) Button { return Button{Text: s, Data: s} }
	rows := Grid([]Button{b("a"), b("b"), b("c")}, 2)
	assert.Len(t, rows, 2)
	assert.Len(t, rows[0], 2)
	assert.Len(t, rows[1], 1)
	assert.Empty(t, Grid(nil, 2))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))
	assert.ErrorIs(t, classify(&tgbotapi.Error{Code: 400, Message: "Bad Request: message is not modified: specified new message content"}), ErrNotModified)
	assert.ErrorIs(t, classify(&tgbotapi.Error{Code: 400, Message: "Bad Request: message to edit not found"}), ErrMessageGone)
	assert.ErrorIs(t, classify(&tgbotapi.Error{Code: 400, Message: "Bad Request: message to delete not found"}), ErrMessageGone)

	other := errors.New("network down")
	assert.Equal(t, other, classify(other))
}

func TestInlineMarkupKeepsCallbackData(t *testing.T) {
	markup := inlineMarkup(Inline(Row(Button{Text: "Bench", Data: "ex:1"})))
	assert.Len(t, markup.InlineKeyboard, 1)
	assert.Equal(t, "Bench", markup.InlineKeyboard[0][0].Text)
	if assert.NotNil(t, markup.InlineKeyboard[0][0].CallbackData) {
		assert.Equal(t, "ex:1", *markup.InlineKeyboard[0][0].CallbackData)
	}

	reply := replyMarkup(&Keyboard{Rows: [][]Button{{{Text: "Training"}}}, Reply: true})
	assert.True(t, reply.ResizeKeyboard)
	assert.Equal(t, "Training", reply.Keyboard[0][0].Text)
}
