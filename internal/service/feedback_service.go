package service

import (
	"alcyxob/fitlog-bot/internal/chat"
	"alcyxob/fitlog-bot/internal/clock"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"
)

// --- Error Definitions ---
var (
	ErrRateLimited      = errors.New("feedback sent too often")
	ErrEmptyFeedback    = errors.New("feedback text is empty")
	ErrFeedbackDisabled = errors.New("feedback inbox is not configured")
)

// DefaultFeedbackCooldown is the minimum gap between two messages of one user.
const DefaultFeedbackCooldown = 10 * time.Second

type FeedbackService interface {
	Submit(ctx context.Context, telegramID int64, name, text string) error
}

// feedbackService relays free text to an operator chat.
type feedbackService struct {
	surface  chat.Surface
	inbox    int64
	cooldown time.Duration
	clock    clock.Clock

	mu   sync.Mutex
	last map[int64]time.Time
}

func NewFeedbackService(surface chat.Surface, inboxChatID int64, cooldown time.Duration, clk clock.Clock) FeedbackService {
	if cooldown <= 0 {
		cooldown = DefaultFeedbackCooldown
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &feedbackService{
		surface:  surface,
		inbox:    inboxChatID,
		cooldown: cooldown,
		clock:    clk,
		last:     make(map[int64]time.Time),
	}
}

func (s *feedbackService) Submit(ctx context.Context, telegramID int64, name, text string) error {
	if s.inbox == 0 {
		return ErrFeedbackDisabled
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyFeedback
	}

	s.mu.Lock()
	now := s.clock.Now()
	if prev, ok := s.last[telegramID]; ok && now.Sub(prev) < s.cooldown {
		s.mu.Unlock()
		return ErrRateLimited
	}
	s.last[telegramID] = now
	s.mu.Unlock()

	body := fmt.Sprintf("<b>Feedback</b> from %s (id %d)\n\n%s", html.EscapeString(name), telegramID, html.EscapeString(text))
	if _, err := s.surface.Send(ctx, s.inbox, body, nil); err != nil {
		// A failed relay does not count against the cooldown.
		s.mu.Lock()
		delete(s.last, telegramID)
		s.mu.Unlock()
		return fmt.Errorf("relay feedback: %w", err)
	}
	return nil
}
