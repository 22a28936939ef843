package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// DefaultRequestTimeout bounds every Bot API call.
const DefaultRequestTimeout = 15 * time.Second

// NewBotAPI connects to the Bot API with a bounded HTTP client.
func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	client := &http.Client{Timeout: DefaultRequestTimeout}
	return tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
}

// Telegram implements Surface over the Bot API. The client library does not
// take a context; the HTTP client timeout bounds each call instead.
type Telegram struct {
	api *tgbotapi.BotAPI
}

func NewTelegram(api *tgbotapi.BotAPI) *Telegram {
	return &Telegram{api: api}
}

func (t *Telegram) Send(_ context.Context, chatID int64, text string, kb *Keyboard) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if kb != nil {
		if kb.Reply {
			msg.ReplyMarkup = replyMarkup(kb)
		} else {
			msg.ReplyMarkup = inlineMarkup(kb)
		}
	}
	sent, err := t.api.Send(msg)
	if err != nil {
		return 0, classify(err)
	}
	return sent.MessageID, nil
}

func (t *Telegram) EditText(_ context.Context, chatID int64, messageID int, text string, kb *Keyboard) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true
	if kb != nil && !kb.Reply {
		markup := inlineMarkup(kb)
		edit.ReplyMarkup = &markup
	}
	_, err := t.api.Request(edit)
	return classify(err)
}

func (t *Telegram) EditMarkup(_ context.Context, chatID int64, messageID int, kb *Keyboard) error {
	markup := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	if kb != nil {
		markup = inlineMarkup(kb)
	}
	_, err := t.api.Request(tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, markup))
	return classify(err)
}

func (t *Telegram) Delete(_ context.Context, chatID int64, messageID int) error {
	_, err := t.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return classify(err)
}

func (t *Telegram) AnswerCallback(_ context.Context, callbackID, text string) error {
	_, err := t.api.Request(tgbotapi.NewCallback(callbackID, text))
	return classify(err)
}

func inlineMarkup(kb *Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb.Rows))
	for _, r := range kb.Rows {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
		for _, b := range r {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, row)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func replyMarkup(kb *Keyboard) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Rows))
	for _, r := range kb.Rows {
		row := make([]tgbotapi.KeyboardButton, 0, len(r))
		for _, b := range r {
			row = append(row, tgbotapi.NewKeyboardButton(b.Text))
		}
		rows = append(rows, row)
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true
	return markup
}

// classify maps Bot API descriptions onto the package sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		desc := strings.ToLower(apiErr.Message)
		switch {
		case strings.Contains(desc, "message is not modified"):
			return fmt.Errorf("%w: %s", ErrNotModified, apiErr.Message)
		case strings.Contains(desc, "message to edit not found"),
			strings.Contains(desc, "message to delete not found"),
			strings.Contains(desc, "message can't be edited"),
			strings.Contains(desc, "message can't be deleted"):
			return fmt.Errorf("%w: %s", ErrMessageGone, apiErr.Message)
		}
	}
	return err
}
