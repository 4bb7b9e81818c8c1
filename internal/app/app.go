package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nostella/nostella/internal/ai"
	"github.com/nostella/nostella/internal/httpapi"
	"github.com/nostella/nostella/internal/mail"
	"github.com/nostella/nostella/internal/service"
	"github.com/nostella/nostella/internal/storage"
	"github.com/nostella/nostella/internal/store"
	"github.com/nostella/nostella/internal/store/drivers/sqlite"
	"github.com/nostella/nostella/pkg/jwtx"
	"github.com/nostella/nostella/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application wires the whole service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	signer  *jwtx.HS256
	mailer  mail.Sender
	objects storage.ObjectStore
	stories ai.Generator

	authService         *service.AuthService
	userService         *service.UserService
	photoService        *service.PhotoService
	storyService        *service.StoryService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized. Anything
// misconfigured fails here, before the listener opens.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "nostella",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	signer, err := jwtx.NewHS256([]byte(cfg.JWTSecret), cfg.Issuer)
	if err != nil {
		return nil, err
	}
	app.signer = signer

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initCollaborators(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("nostella starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops the housekeeping worker and
// closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("nostella stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied")
	return nil
}

func (app *Application) initCollaborators() error {
	ctx := context.Background()

	if app.cfg.MailDisabled {
		app.logger.Warn("mail delivery disabled, verification codes will only be logged")
		app.mailer = mail.NewDisabled()
	} else {
		mailer, err := mail.NewSMTP(mail.Config{
			Host:        app.cfg.SMTPHost,
			Port:        app.cfg.SMTPPort,
			Username:    app.cfg.SMTPUsername,
			Password:    app.cfg.SMTPPassword,
			FromName:    app.cfg.SMTPFromName,
			FromAddress: app.cfg.SMTPFromAddr,
			SkipVerify:  app.cfg.SMTPSkipTLS,
		})
		if err != nil {
			return err
		}
		app.mailer = mailer
	}

	objects, err := storage.NewS3(ctx, storage.S3Config{
		Region:        app.cfg.S3Region,
		Endpoint:      app.cfg.S3Endpoint,
		AccessKey:     app.cfg.S3AccessKey,
		SecretKey:     app.cfg.S3SecretKey,
		Bucket:        app.cfg.S3Bucket,
		PublicBaseURL: app.cfg.S3PublicBaseURL,
	})
	if err != nil {
		return err
	}
	app.objects = objects

	if app.cfg.GeminiAPIKey == "" {
		app.logger.Warn("no Gemini API key, story generation disabled")
		app.stories = ai.NewDisabled()
	} else {
		stories, err := ai.NewGemini(ctx, app.cfg.GeminiAPIKey)
		if err != nil {
			return err
		}
		app.stories = stories
	}

	return nil
}

func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:      app.db,
		Mailer:     app.mailer,
		Signer:     app.signer,
		Issuer:     app.cfg.Issuer,
		SessionTTL: app.cfg.SessionTTL,
	}
	app.userService = &service.UserService{
		Store:   app.db,
		Objects: app.objects,
	}
	app.photoService = &service.PhotoService{
		Store:   app.db,
		Objects: app.objects,
	}
	app.storyService = &service.StoryService{
		Store:     app.db,
		Generator: app.stories,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(app.signer, BuildVersion, app.db, app.logger)
	app.router.AuthService = app.authService
	app.router.UserService = app.userService
	app.router.PhotoService = app.photoService
	app.router.StoryService = app.storyService
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: app.router,
	}
}
