package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/habeshagames/bingohub/internal/adapters/http"
	"github.com/habeshagames/bingohub/internal/app"
	"github.com/habeshagames/bingohub/internal/config"
	"github.com/habeshagames/bingohub/internal/core"
	"github.com/habeshagames/bingohub/internal/pattern"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := godotenv.Load(); err != nil {
		fmt.Println("no .env file found, reading environment variables")
	}

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	players := core.NewPlayerStore()
	rooms := core.NewRoomStore(players, pattern.New(), core.RoomConfig{
		MinPlayers:    cfg.MinPlayers,
		MaxPlayers:    cfg.MaxPlayers,
		ServiceCharge: cfg.ServiceCharge,
	})
	registry := app.NewRegistry()
	dispatch := app.NewDispatcher(registry, rooms, cfg.BatchMinInterval)

	orch := &app.Orchestrator{
		Registry: registry,
		Players:  players,
		Rooms:    rooms,
		Dispatch: dispatch,
	}

	go orch.RunSweeper(ctx, cfg.SweepInterval, cfg.MaxSilence, cfg.PongWait)

	r := router.SetupRouter(ctx, cfg, orch)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("bingohub server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited gracefully")
}
