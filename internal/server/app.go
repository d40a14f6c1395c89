// Package server initializes and runs the application: it opens the
// database, applies migrations, wires services together and starts the HTTP
// server with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mkovalev/chatvault/internal/logging"
	"github.com/mkovalev/chatvault/internal/openaix"
	"github.com/mkovalev/chatvault/internal/server/auth"
	"github.com/mkovalev/chatvault/internal/server/config"
	"github.com/mkovalev/chatvault/internal/server/httpapi"
	"github.com/mkovalev/chatvault/internal/server/repositories/repomanager"
	"github.com/mkovalev/chatvault/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	tokens, err := auth.NewTokenCodec([]byte(c.JWTSecret), c.JWTAlgorithm, c.AccessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("token codec init error: %w", err)
	}

	authService := services.NewAuthService(db, rm, tokens)
	userService := services.NewUserService(db, rm)
	keyService := services.NewAPIKeyService(db, rm)
	openaiService := services.NewOpenAIService(keyService, openaix.NewClient(c.ProviderBaseURL))
	avatarService := services.NewAvatarService(c)

	server := httpapi.NewServer(c.EndpointAddrHTTP, logger,
		authService, userService, keyService, openaiService, avatarService)

	return &App{config: c, logger: logger, db: db, server: server}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(); err != nil {
			app.logger.Error(ctx, "http server stopped", "error", err)
			cancelFunc()
		}
	}()

	<-ctx.Done()

	app.logger.Info(ctx, "shutting down")

	if err := app.server.Shutdown(); err != nil {
		app.logger.Error(ctx, "shutdown error", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	wg.Wait()
}
