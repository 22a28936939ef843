package service

import (
	"alcyxob/fitlog-bot/internal/chat"
	"alcyxob/fitlog-bot/internal/domain"
	"alcyxob/fitlog-bot/internal/repository"
	"alcyxob/fitlog-bot/internal/stats"
	"context"
	"errors"
	"fmt"
	"html"
	"math"
	"strings"
)

// ReportCallbackPrefix prefixes the window switch buttons, e.g. "rp:monthly".
const ReportCallbackPrefix = "rp:"

type ReportService interface {
	Compute(ctx context.Context, telegramID int64, window stats.Window) (*stats.Report, error)
	// Render returns the report as HTML text.
	Render(ctx context.Context, telegramID int64, window stats.Window) (string, error)
}

type reportService struct {
	userRepo repository.UserRepository
	engine   *stats.Engine
}

func NewReportService(userRepo repository.UserRepository, engine *stats.Engine) ReportService {
	return &reportService{userRepo: userRepo, engine: engine}
}

func (s *reportService) Compute(ctx context.Context, telegramID int64, window stats.Window) (*stats.Report, error) {
	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.engine.Compute(ctx, user.ID, window)
}

func (s *reportService) Render(ctx context.Context, telegramID int64, window stats.Window) (string, error) {
	report, err := s.Compute(ctx, telegramID, window)
	if err != nil {
		return "", err
	}
	return FormatReport(report), nil
}

// FormatReport lays out a report. An empty period shows only the no-data line.
func FormatReport(r *stats.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", r.Window.Title())
	if r.Empty {
		b.WriteString("No data for this period.")
		return b.String()
	}

	fmt.Fprintf(&b, "Workouts: %d\n", r.Summary.Sessions)
	fmt.Fprintf(&b, "Sets: %d\n", r.Summary.SetCount)
	fmt.Fprintf(&b, "Volume: %s kg\n", round1(r.Summary.VolumeKg))
	fmt.Fprintf(&b, "Cardio: %s min, %s km\n", round1(r.Summary.CardioMinutes), round1(r.Summary.CardioKm))

	if len(r.TopStrength) > 0 {
		b.WriteString("\n<b>Top strength</b>\n")
		for i, row := range r.TopStrength {
			fmt.Fprintf(&b, "%d. %s: %d sets, %s kg\n", i+1, html.EscapeString(row.Name), row.Sets, round1(row.VolumeKg))
		}
	}
	if len(r.TopCardio) > 0 {
		b.WriteString("\n<b>Top cardio</b>\n")
		for i, row := range r.TopCardio {
			fmt.Fprintf(&b, "%d. %s: %s min, %s km\n", i+1, html.EscapeString(row.Name), round1(row.Minutes), round1(row.Km))
		}
	}

	if last := r.Last; last != nil {
		b.WriteString("\n<b>Last workout</b>")
		if last.OutsideWindow {
			b.WriteString(" (outside period)")
		}
		fmt.Fprintf(&b, "\n%s\n", last.Session.CreatedAt.UTC().Format("2006-01-02 15:04"))
		fmt.Fprintf(&b, "Sets: %d, volume %s kg", last.SetCount, round1(last.VolumeKg))
		if last.CardioMinutes > 0 || last.CardioKm > 0 {
			fmt.Fprintf(&b, ", cardio %s min, %s km", round1(last.CardioMinutes), round1(last.CardioKm))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// ReportKeyboard switches between windows.
func ReportKeyboard(current stats.Window) *chat.Keyboard {
	buttons := make([]chat.Button, 0, len(stats.Windows))
	for _, w := range stats.Windows {
		label := w.Title()
		if w == current {
			label = "• " + label
		}
		buttons = append(buttons, chat.Button{Text: label, Data: ReportCallbackPrefix + string(w)})
	}
	return chat.Inline(chat.Row(buttons...))
}

func round1(v float64) string {
	return domain.FormatNumber(math.Round(v*10) / 10)
}
