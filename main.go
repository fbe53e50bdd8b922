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

	"github.com/robalobadob/guesstheword/internal/config"
	"github.com/robalobadob/guesstheword/internal/httpserver"
	"github.com/robalobadob/guesstheword/internal/results"
	"github.com/robalobadob/guesstheword/internal/store"
	"github.com/robalobadob/guesstheword/internal/words"
)

func main() {
	cfg := config.Load()
	zerolog.SetGlobalLevel(cfg.LogLevel)

	if err := words.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}

	opts := httpserver.Options{
		Store:        store.NewMemoryStore(),
		Secret:       cfg.JWTSecret,
		TokenTTL:     cfg.TokenTTL,
		ClientOrigin: cfg.ClientOrigin,
	}
	if cfg.DBPath != "" {
		journal, err := results.Open(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("db", cfg.DBPath).Msg("failed to open results journal")
		}
		defer journal.Close()
		opts.Journal = journal
	}

	srv := httpserver.New(opts)
	hs := &http.Server{Addr: ":" + cfg.Port, Handler: srv.Router()}

	go func() {
		log.Info().Str("port", cfg.Port).Bool("journal", opts.Journal != nil).Msg("starting guesstheword server")
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hs.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	srv.Shutdown()
	log.Info().Msg("bye")
}
