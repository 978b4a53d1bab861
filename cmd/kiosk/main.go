package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-seb/internal/kiosk"
	"github.com/stemsi/exstem-seb/internal/logger"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg, err := kiosk.LoadConfig()
	if err != nil {
		boot := logger.New(os.Stderr, "", "")
		boot.Fatal().Err(err).Msg("Invalid kiosk configuration")
	}

	// ─── Initialize Logger ─────────────────────────────────────────────
	// stdout belongs to the embedding host.
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("env", cfg.Env).
		Str("web_url", cfg.WebURL.String()).
		Str("api_url", cfg.APIURL.String()).
		Bool("quit_password", len(cfg.QuitPasswordHash) > 0).
		Bool("browser_key", cfg.BrowserKey != "").
		Msg("Starting ExStem kiosk")

	// ─── Decide Launch Mode & Build Components ─────────────────────────
	app := kiosk.NewApp(cfg, os.Args[1:], log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ─── Run Until Quit or Signal ──────────────────────────────────────
	if err := app.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Kiosk stopped with error")
	}

	log.Info().Msg("Kiosk exited")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
