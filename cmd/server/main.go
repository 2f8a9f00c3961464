package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/api"
	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/internal"
	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/moderation"
	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/repositories"
	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/runtime"
	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/services"
	"github.com/Bernardo-Rodrigues/api-bate-papo-uol/storage"
	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so every defer (database close included)
// executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories & Room Service
	store := storage.NewStore(db)
	participants := repositories.NewParticipantRepository(store, log)
	messages := repositories.NewMessageRepository(store, log)

	moderator, err := moderation.New(config.CensoredWordList())
	if err != nil {
		return fmt.Errorf("moderation setup failed: %w", err)
	}
	rooms := services.NewRoomService(participants, messages, moderator, log)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Presence Sweeper
	sweeper := runtime.NewSweeper(log, participants, messages, config.SweepInterval, config.PresenceTimeout)
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Sweeper stopped", "err", err)
		}
	}()

	// 6. HTTP Server Setup
	app := fiber.New(fiber.Config{AppName: "api-bate-papo-uol"})
	app.Use(recover.New())
	api.NewHandler(rooms, log).Register(app)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := app.Listen(address); err != nil {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Error("HTTP shutdown failed", "err", err)
	}
	<-sweeperDone
	log.Info("Program stopped cleanly")

	return nil
}
