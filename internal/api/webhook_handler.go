package api

import (
	"alcyxob/fitlog-bot/internal/logging"
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SecretTokenHeader carries the secret registered with setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// UpdateSink accepts updates for asynchronous processing.
type UpdateSink interface {
	Submit(ctx context.Context, update tgbotapi.Update) bool
}

type WebhookHandler struct {
	sink   UpdateSink
	secret string
	log    logging.Logger
}

func NewWebhookHandler(sink UpdateSink, secret string, log logging.Logger) *WebhookHandler {
	return &WebhookHandler{sink: sink, secret: secret, log: log}
}

// Receive queues one update. Telegram retries anything but a 2xx, so a
// malformed body is acknowledged and dropped.
func (h *WebhookHandler) Receive(c *gin.Context) {
	if h.secret != "" {
		got := c.GetHeader(SecretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			abortWithError(c, http.StatusUnauthorized, "Invalid secret token")
			return
		}
	}

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.log.Warnf("webhook: dropping malformed update: %v", err)
		c.Status(http.StatusOK)
		return
	}

	// The request context ends with the response; queueing must not depend on it.
	if !h.sink.Submit(context.WithoutCancel(c.Request.Context()), update) {
		abortWithError(c, http.StatusServiceUnavailable, "Update queue unavailable")
		return
	}
	c.Status(http.StatusOK)
}
