package cli

import (
	"alcyxob/fitlog-bot/internal/anchor"
	"alcyxob/fitlog-bot/internal/api"
	"alcyxob/fitlog-bot/internal/bot"
	"alcyxob/fitlog-bot/internal/chat"
	"alcyxob/fitlog-bot/internal/config"
	"alcyxob/fitlog-bot/internal/reaper"
	"alcyxob/fitlog-bot/internal/service"
	"alcyxob/fitlog-bot/internal/session"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot and the admin API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := openCore(ctx, cmd)
	if err != nil {
		return err
	}
	defer c.Close(context.Background())
	cfg, log := c.cfg, c.log

	if cfg.Telegram.Token == "" {
		return errors.New("telegram.token is required to serve")
	}

	// --- Telegram ---
	botAPI, err := chat.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return err
	}
	surface := chat.NewTelegram(botAPI)

	// --- Initialize Services ---
	ctrl := session.NewController(session.Deps{
		Store:     c.store,
		Anchors:   anchor.NewManager(surface, log),
		Reaper:    c.reaper,
		Surface:   surface,
		Publisher: c.publisher,
		Clock:     c.clock,
		Log:       log,
	})
	profile := service.NewProfileService(c.store.Users, c.clock)
	feedback := service.NewFeedbackService(surface, cfg.Telegram.FeedbackChatID, cfg.Feedback.Cooldown, c.clock)
	router := bot.NewRouter(ctrl, profile, feedback, c.reports, surface, log)

	// Workers outlive the signal so queued updates are drained on shutdown.
	dispatcher := bot.NewDispatcher(router, bot.DefaultWorkers, log)
	dispatcher.Start(context.WithoutCancel(ctx))

	var sweeper *reaper.Sweeper
	if cfg.Session.SweepInterval > 0 {
		sweeper = reaper.NewSweeper(c.reaper, c.store.Sessions, cfg.Session.SweepInterval, log)
		go sweeper.Start(ctx)
	}

	// --- Initialize Gin Engine ---
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.Default()

	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		jwtSecret = uuid.NewString()
		log.Warn("jwt.secret not set, admin tokens will not survive a restart")
	}
	svc := api.Services{
		Auth:    service.NewAuthService(cfg.Admin.Username, cfg.Admin.PasswordHash, jwtSecret, cfg.JWT.Expiration, c.clock),
		Reports: c.reports,
		Exports: c.exports,
	}
	var webhook *api.Webhook
	if cfg.Telegram.Mode == config.ModeWebhook {
		webhook = &api.Webhook{Path: cfg.Telegram.WebhookPath, Secret: cfg.Telegram.WebhookSecret, Sink: dispatcher}
	}
	api.SetupRoutes(engine, svc, webhook, log)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Infof("http: listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// --- Updates ---
	polled := make(chan struct{})
	if webhook != nil {
		close(polled)
		if err := bot.RegisterWebhook(botAPI, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret); err != nil {
			stop()
			return shutdown(server, dispatcher, sweeper, err)
		}
		log.Infof("bot: webhook registered at %s", cfg.Telegram.WebhookURL)
	} else {
		go func() {
			defer close(polled)
			bot.Poll(ctx, botAPI, dispatcher, log)
		}()
	}

	// --- Graceful Shutdown ---
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
		stop()
	}
	<-polled
	return shutdown(server, dispatcher, sweeper, runErr)
}

// shutdown stops accepting updates, then drains the dispatcher.
func shutdown(server *http.Server, dispatcher *bot.Dispatcher, sweeper *reaper.Sweeper, runErr error) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	dispatcher.Stop()
	if sweeper != nil {
		sweeper.Wait()
	}
	return errors.Join(runErr, err)
}
