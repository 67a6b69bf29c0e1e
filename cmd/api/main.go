package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/notedrop/notedrop-api/internal/apikey"
	"github.com/notedrop/notedrop-api/internal/auth"
	"github.com/notedrop/notedrop-api/internal/cache"
	"github.com/notedrop/notedrop-api/internal/config"
	"github.com/notedrop/notedrop-api/internal/content"
	"github.com/notedrop/notedrop-api/internal/database"
	"github.com/notedrop/notedrop-api/internal/middleware"
	"github.com/notedrop/notedrop-api/internal/note"
	"github.com/notedrop/notedrop-api/internal/notification"
	"github.com/notedrop/notedrop-api/internal/notification/templates"
	"github.com/notedrop/notedrop-api/internal/server"
)

// Options for the CLI.
type Options struct {
	Port int `help:"Port to listen on" short:"p" default:"8080"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		// Use a structured logger
		logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
		cfg := config.Load()
		if cfg == nil {
			logger.Error("failed to load configuration")
			os.Exit(1)
		}
		logger.Info("configuration loaded successfully", "env", cfg.Server.Env)

		// --- Database & Cache ---
		dbPool := database.NewPostgresPool(cfg.Database.URL)
		if dbPool == nil {
			logger.Error("failed to connect to postgres")
			os.Exit(1)
		}
		hooks.OnStop(dbPool.Close)
		logger.Info("successfully connected to postgres database")
		redisClient := cache.NewRedisClient(cfg.Redis.URL)
		if redisClient == nil {
			logger.Error("failed to connect to redis")
			os.Exit(1)
		}
		hooks.OnStop(func() { redisClient.Close() })
		logger.Info("successfully connected to redis")

		// --- Module Initialization (Bottom-Up) ---

		// Notifications
		var sender notification.Service
		if cfg.SMTP.Enabled {
			sender = notification.NewService(logger, notification.NewSMTPEmailSender(
				cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From, logger))
		} else {
			sender = notification.NewService(logger, notification.NewLogEmailSender(logger))
		}
		engine := templates.NewEngine(templates.Config{}, logger)
		mailer := notification.NewAuthMailer(sender, engine, logger, cfg.SMTP.From)

		// Auth Module
		authRepo := auth.NewRepository(dbPool)
		authService := auth.NewService(&auth.Config{
			Repo:   authRepo,
			Mailer: mailer,
			Logger: logger,
			Config: cfg,
		})

		// API Key Module
		keyRepo := apikey.NewRepository(dbPool)
		keyService := apikey.NewService(keyRepo, logger)

		// Note Module
		noteRepo := note.NewRepository(dbPool)
		noteService := note.NewService(noteRepo, content.NewRenderer(), logger)

		limiter := middleware.NewRateLimiter(redisClient, logger)
		router := server.New(cfg, logger, server.Services{
			Auth:   authService,
			APIKey: keyService,
			Note:   noteService,
		}, limiter)

		hooks.OnStart(func() {
			logger.Info(fmt.Sprintf("Starting server on port %d...", options.Port))
			if err := http.ListenAndServe(fmt.Sprintf(":%d", options.Port), router); err != nil {
				slog.Error("Server failed to start", "error", err)
				os.Exit(1)
			}
		})
	})
	cli.Run()
}
