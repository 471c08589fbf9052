package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/elearning-chat/config"
	"github.com/xenn00/elearning-chat/internal/queue"
	chat_repo "github.com/xenn00/elearning-chat/internal/repo/chat"
	"github.com/xenn00/elearning-chat/internal/routers"
	"github.com/xenn00/elearning-chat/internal/websocket"
	"github.com/xenn00/elearning-chat/internal/worker"
	"github.com/xenn00/elearning-chat/state"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(config.Conf.App.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	appState, err := state.InitAppState(ctx, stop, config.Conf)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application state")
	}
	defer appState.Close()

	wsHub := websocket.NewHub()
	log.Info().Msg("Websocket hub initialized")

	producer := queue.NewProducer(appState.Redis)

	r := routers.NewRouter(routers.Dependencies{
		State:    appState,
		Hub:      wsHub,
		Producer: producer,
		WS:       config.Conf.WS,
		MaxRetry: config.Conf.WORKER.MaxRetry,
	})

	workerPool := worker.NewWorkerPool(appState.Redis, config.Conf.WORKER.Count, config.Conf.WORKER.PollInterval)
	workerPool.Register(queue.JobMembershipActivity, worker.NewMembershipActivityHandler(chat_repo.NewChatRepo(appState)))

	var archive worker.DLQArchive = worker.LogDLQArchive{}
	if appState.Mongo != nil {
		archive = worker.NewMongoDLQArchive(appState.Mongo, config.Conf.DATABASE.Mongo.Database)
	}

	server := &http.Server{
		Addr:              config.Conf.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Msgf("Starting server on http://localhost%s", config.Conf.App.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		workerPool.Start(gctx)
		workerPool.StartDLQWorker(gctx, archive)
		workerPool.Wait()
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutdown initiated...")

		// close the sessions first so hijacked connections do not hold up Shutdown
		wsHub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		return
	}
	log.Info().Msg("Server exited gracefully.")
}
