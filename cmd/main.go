package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chatline/auth"
	"chatline/internal"
	"chatline/repositories"
	"chatline/runtime"
	"chatline/runtime/workers"
	"chatline/server"
	"chatline/services"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the server and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := internal.NewLogger(config.LogLevel)
	auth.SetSigningKey(config.JWTSecret)

	// 2. Storage (BadgerDB + Bluge index)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	index, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = index.Close()
	}()

	// 3. Repositories & Services
	userRepository := repositories.NewUserRepository(db, index, log)
	conversationRepository := repositories.NewConversationRepository(db)
	messageRepository := repositories.NewMessageRepository(db, log, config.LimitMessages)

	authService := services.NewAuthService(userRepository, config.AuthTokenDuration)
	userService := services.NewUserService(userRepository)
	chatService := services.NewChatService(conversationRepository, userRepository, messageRepository, log)
	messageService := services.NewMessageService(messageRepository, conversationRepository, userRepository, log)

	// 4. Realtime tables
	registry := runtime.NewRegistry()
	rooms := runtime.NewRooms(registry, log)
	presence := runtime.NewPresence(registry, log)
	typing := runtime.NewTyping(rooms)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Background workers under supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		workers.NewMaintenanceWorker(log, db, config.GCInterval),
		workers.NewTelemetryWorker(log, config.MetricInterval, func() int {
			return len(registry.OnlineUserIDs())
		}),
	)
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 7. HTTP & websocket server
	srv := server.New(config, log, registry, rooms, presence, typing,
		authService, userService, chatService, messageService)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Listen(); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	if err := srv.Shutdown(); err != nil {
		log.Error("Server shutdown failed", "err", err)
	}
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}
