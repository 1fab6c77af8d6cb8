package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-chat/auth"
	"social-chat/domain/chat"
	"social-chat/infrastructure/rest"
	"social-chat/infrastructure/ws"
	"social-chat/moderation"
	"social-chat/observability"
	"social-chat/projection"
	"social-chat/repositories"
	"social-chat/runtime"
	"social-chat/runtime/workers"
	"social-chat/services"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run keeps every defer on the exit path, main only turns the result into an exit code.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	charReplacement, err := CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage (BadgerDB + Bluge)
	db, err := badger.Open(buildBadgerOpts(config, log))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	index, err := repositories.NewMessageIndex(bluge.DefaultConfig(config.BlugeFilepath), log)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		log.Info("Closing Bluge...")
		_ = index.Close()
	}()

	messageRepository := repositories.NewMessageRepository(db, log)
	groupRepository := repositories.NewGroupRepository(db, log)
	userRepository := repositories.NewUserRepository(db)

	// 3. Moderation
	moderator, err := buildModerator(config, charReplacement, log)
	if err != nil {
		return exitConfig, err
	}

	// 4. Real-time engine
	monitoring := observability.NewMonitoringManager(log)
	registry := runtime.NewRegistry(config.SinkTimeout, log)
	populator := projection.NewPopulator(userRepository, groupRepository, chat.ChatProjection, log)
	membership := runtime.NewMembership(registry, groupRepository, populator, log)
	engine := runtime.NewEngine(registry, messageRepository, groupRepository, index, populator, moderator,
		membership, runtime.EngineConfig{QueueSize: config.BufferSize, ReplyErrors: config.ActionErrorReplies}, log).
		WithMonitoring(monitoring)

	sup := workers.NewSupervisor(log).WithRestartDelay(config.RestartInterval)
	sup.Add(workers.NewActionPool(config.NumberOfWorkers, engine.Actions(), engine, log)...)
	sup.Add(workers.NewHealthMonitoringWorker(log, monitoring, config.MetricInterval))

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Workers outlive the signal: they are stopped once the server no longer accepts actions
	supervised := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(supervised)
	}()

	// 6. HTTP Server Setup
	gin.SetMode(gin.ReleaseMode)
	authority := auth.NewTokenAuthority(config.JwtSecret, config.JwtIssuer, config.AuthTokenDuration)
	websocket := ws.NewHandler(registry, engine, membership, ws.Config{
		SendBuffer:     config.ConnectionBufferSize,
		MaxMessageSize: config.MaxMessageSize,
		RateBurst:      config.RateBurst,
		RateInterval:   config.RateInterval,
		AllowedOrigins: config.Origins(),
		ReplyErrors:    config.ActionErrorReplies,
	}, log)
	router := rest.NewRouter(rest.Dependencies{
		Authority:   authority,
		ChatService: services.NewChatService(messageRepository, groupRepository, userRepository, index, populator, log),
		Registry:    registry,
		Monitoring:  monitoring,
		Websocket:   websocket.Serve,
		Log:         log,
	})

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	code := exitOK
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 8. Final Cleanup (Graceful Shutdown)
	// Websocket connections are hijacked and not awaited by Shutdown.
	log.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown incomplete", "error", err)
	}
	sup.Stop()
	<-supervised
	log.Info("Program stopped cleanly")

	return code, runErr
}

func buildBadgerOpts(config Config, log *slog.Logger) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if log.Enabled(context.Background(), slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}

// buildModerator loads the word lists from CENSORED_DIR, or the embedded ones.
func buildModerator(config Config, charReplacement rune, log *slog.Logger) (*moderation.Moderator, error) {
	loader, dir := moderation.NewEmbeddedLoader(), moderation.DefaultDirectory
	if config.CensoredDir != "" {
		loader, dir = moderation.NewCensoredLoader(os.DirFS(config.CensoredDir)), "."
	}
	data, err := loader.LoadAll(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to load censored words: %w", err)
	}
	log.Info("Censored words loaded", "words", len(data.Words), "languages", data.Languages)
	return moderation.NewModerator(data.Words, charReplacement, log)
}
