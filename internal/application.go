package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/config"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-engine/internal/service"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-engine/transport/rest"
	"github.com/rocketscienceinc/tictactoe-engine/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	mode, err := entity.ParseMode(conf.Game.Mode)
	if err != nil {
		return fmt.Errorf("invalid game mode: %w", err)
	}

	difficulty, err := entity.ParseDifficulty(conf.Game.Difficulty)
	if err != nil {
		return fmt.Errorf("invalid game difficulty: %w", err)
	}

	tiers, err := conf.Game.DifficultyTiers()
	if err != nil {
		return err
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	bot := service.NewBotService(rand.NewSource(time.Now().UnixNano()), service.WithTiers(tiers...))

	gameController := tictactoe.NewGameController(logger, bot, tictactoe.WithThinkDelay(conf.Game.ThinkDelay))
	defer gameController.Close()

	historyService := service.NewHistoryService(logger, repository.NewHistoryRepository(sqliteStorage.Connection), conf.Game.Players())
	sessionService := service.NewSessionService(logger, repository.NewSessionRepository(redisStorage.Connection), conf.Game.Session)

	gameUseCase := usecase.NewGameUseCase(logger, gameController, historyService, sessionService)
	defer gameUseCase.Close()

	wsServer := websocket.New(logger, gameUseCase)
	defer gameUseCase.Subscribe(wsServer)()

	resumed, err := gameUseCase.Resume(ctx)
	if err != nil {
		return fmt.Errorf("could not resume session: %w", err)
	}

	if !resumed {
		if _, err = gameUseCase.NewGame(mode, difficulty); err != nil {
			return fmt.Errorf("could not start game: %w", err)
		}
	}

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort, rest.NewRouter(logger, gameUseCase, wsServer)); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
