package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/christopher-deriv/discord-reminders/internal/api"
	"github.com/christopher-deriv/discord-reminders/internal/auth"
	"github.com/christopher-deriv/discord-reminders/internal/config"
	"github.com/christopher-deriv/discord-reminders/internal/handlers"
	"github.com/christopher-deriv/discord-reminders/internal/metrics"
	"github.com/christopher-deriv/discord-reminders/internal/repository/postgres"
	"github.com/christopher-deriv/discord-reminders/internal/service"
	"github.com/christopher-deriv/discord-reminders/internal/wizard"
	"github.com/christopher-deriv/discord-reminders/pkg/discord"
	"github.com/christopher-deriv/discord-reminders/pkg/giphy"
	"github.com/christopher-deriv/discord-reminders/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel)
	l.Info("Starting discord-reminders...")

	// Database
	db, err := config.NewDatabase(cfg.DatabaseURL, l)
	if err != nil {
		l.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate("migrations"); err != nil {
		l.Fatalf("Failed to run migrations: %v", err)
	}

	// External collaborators
	discordClient := discord.NewClient(cfg.DiscordToken)
	giphyClient := giphy.NewClient(cfg.GiphyAPIKey)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	// Core components
	reminderRepo := postgres.NewReminderRepository(db.DB)
	svc := service.New(reminderRepo, discordClient, l, m, service.Options{
		DefaultGIFURL: cfg.DefaultGIFURL,
		TickInterval:  cfg.TickInterval,
		DeleteGrace:   cfg.DeleteGrace,
	})

	checker := auth.NewChecker(cfg.AuthorizedRoleIDs, l)
	wizardManager := wizard.NewManager(reminderRepo, handlers.NewGiphySearcher(giphyClient), l)
	interactions := handlers.NewInteractions(svc, wizardManager, checker, discordClient, cfg.DefaultChannelIDs, l)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		l.Info("Received shutdown signal...")
		cancel()
	}()

	// HTTP server for interactions, API, and metrics
	apiServer := api.NewServer(svc, interactions, registry, l)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: apiServer.Handler(),
	}

	// The scheduler holds its first tick until the interactions endpoint
	// is accepting traffic.
	ready := make(chan struct{})

	go func() {
		l.Infof("HTTP server listening on :%s", cfg.Port)
		close(ready)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Errorf("HTTP server error: %v", err)
			cancel()
		}
	}()

	go svc.StartScheduler(ctx, ready)

	l.Info("discord-reminders started successfully")

	<-ctx.Done()

	l.Info("Shutting down HTTP server...")
	httpServer.Close()

	l.Info("discord-reminders stopped")
}
