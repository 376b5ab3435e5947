package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/blackout-game/blackout-backend/internal/config"
	"github.com/blackout-game/blackout-backend/internal/game"
	"github.com/blackout-game/blackout-backend/internal/httpapi"
	"github.com/blackout-game/blackout-backend/internal/prompt"
	"github.com/blackout-game/blackout-backend/internal/registry"
	"github.com/blackout-game/blackout-backend/internal/session"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("bad configuration", zap.Error(err))
	}
	lang, ok := game.ParseLanguage(cfg.DefaultLanguage)
	if !ok {
		log.Fatal("bad configuration", zap.String("language", cfg.DefaultLanguage))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := prompt.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal("open prompt catalog", zap.Error(err))
	}
	defer source.Close()

	reg := registry.New(source, registry.Config{
		DefaultLanguage: lang,
		DefaultRounds:   cfg.DefaultRounds,
		IdleReclaim:     cfg.IdleReclaim,
		EndedReclaim:    cfg.EndedReclaim,
	})
	sess := session.New(ctx, reg, prompt.NewSelector(source), session.Config{
		MinPlayers:    cfg.MinPlayers,
		MinRounds:     cfg.MinRounds,
		MaxRounds:     cfg.MaxRounds,
		RoundEndDelay: cfg.RoundEndDelay,
		SweepInterval: cfg.SweepInterval,
	}, log)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(sess, log),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
