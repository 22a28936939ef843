package bot

import (
	"alcyxob/fitlog-bot/internal/logging"
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// PollTimeout is the long-poll timeout in seconds.
const PollTimeout = 30

// Poll receives updates by long polling until ctx is done.
func Poll(ctx context.Context, api *tgbotapi.BotAPI, d *Dispatcher, log logging.Logger) {
	// Polling and webhooks are exclusive on the Bot API side.
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.Warnf("bot: delete webhook before polling: %v", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = PollTimeout
	updates := api.GetUpdatesChan(u)
	log.Infof("bot: polling as @%s", api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			d.Submit(ctx, update)
		}
	}
}

// RegisterWebhook points the Bot API at url. Telegram echoes secret in the
// X-Telegram-Bot-Api-Secret-Token header of every delivery.
func RegisterWebhook(api *tgbotapi.BotAPI, url, secret string) error {
	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", secret)
	resp, err := api.MakeRequest("setWebhook", params)
	if err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	if !resp.Ok {
		return fmt.Errorf("set webhook: %s", resp.Description)
	}
	return nil
}
