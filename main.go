package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/hangman/internal/auth"
	"github.com/robalobadob/hangman/internal/config"
	"github.com/robalobadob/hangman/internal/httpserver"
	"github.com/robalobadob/hangman/internal/logging"
	"github.com/robalobadob/hangman/internal/randx"
	"github.com/robalobadob/hangman/internal/scores"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/words"
)

func main() {
	_ = godotenv.Load()
	os.Exit(serve())
}

// serve runs the server until a signal arrives and returns the process exit
// code. Deferred cleanup runs before main exits.
func serve() int {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return 1
	}
	logFile := logging.Setup(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("server exited")
		return 1
	}
	log.Info().Msg("bye")
	return 0
}

func loadCorpus(cfg *config.Config) (*words.Corpus, error) {
	if cfg.WordsFile != "" {
		return words.LoadFile(cfg.WordsFile, cfg.WordMinLen, cfg.WordMaxLen)
	}
	return words.LoadDefault(cfg.WordMinLen, cfg.WordMaxLen)
}

// checkBands refuses to start when some difficulty could never be served.
func checkBands(sel *words.Selector) error {
	for _, t := range []words.Tier{words.Easy, words.Medium, words.Hard} {
		if _, err := sel.Band(t); err != nil {
			return fmt.Errorf("word list vs WORD_BAND_SIZE: %w", err)
		}
	}
	return nil
}

func run(ctx context.Context, cfg *config.Config) error {
	corpus, err := loadCorpus(cfg)
	if err != nil {
		return fmt.Errorf("load word list: %w", err)
	}
	sel := words.NewSelector(corpus, cfg.WordBandSize, randx.Source{})
	log.Info().Int("words", corpus.Len()).Int("bandSize", sel.BandSize()).Msg("word list loaded")
	if err := checkBands(sel); err != nil {
		return err
	}

	sc, err := scores.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer sc.Close()

	var sessions store.Store
	switch cfg.SessionStore {
	case config.SessionValkey:
		vcfg := store.ValkeyConfig{
			Addr:     cfg.ValkeyAddr,
			Password: cfg.ValkeyPass,
			DB:       cfg.ValkeyDB,
			TTL:      cfg.SessionTTL,
		}
		client, err := store.NewValkeyClient(ctx, vcfg)
		if err != nil {
			return err
		}
		defer client.Close()
		sessions = store.NewValkeyStore(client, vcfg)
	default:
		sessions = store.NewMemoryStore(cfg.SessionTTL)
	}
	log.Info().Str("sessions", cfg.SessionStore).Dur("ttl", cfg.SessionTTL).Msg("session store ready")

	authSvc := auth.NewService(sc, auth.NewTokens(cfg.JWTSecret, cfg.JWTExpiresDays))
	handler := httpserver.New(httpserver.Deps{
		Sessions:          sessions,
		Scores:            sc,
		Auth:              authSvc,
		Cookies:           auth.Cookies{Name: cfg.CookieName, Secure: cfg.Production},
		Selector:          sel,
		Rand:              randx.Source{},
		ClientOrigin:      cfg.ClientOrigin,
		AuthRatePerMinute: cfg.AuthRatePerMinute,
		LeaderboardLimit:  cfg.LeaderboardLimit,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("starting hangman server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
