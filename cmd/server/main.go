package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/gommon/log"

	"personas/pkg/config"
	"personas/pkg/corpus"
	"personas/pkg/inference"
	"personas/pkg/server"
	"personas/pkg/utils"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	utils.SetLogLevel(cfg.LogLevel)

	loader := corpus.NewLoader(nil, cfg.CorpusTTL)
	srv := server.NewServer(cfg, loader)
	if cfg.LogLevel == "debug" {
		srv.Echo.Logger.SetLevel(log.DEBUG)
	}

	if inf, err := inference.New(cfg); err != nil {
		log.Warnf("Persona generation disabled until configured: %v", err)
	} else {
		srv.Inferencer = inf
	}

	if entries, err := loader.Load(ctx, cfg.Corpus, 0); err != nil {
		log.Warnf("Reference corpus %s not loaded: %v", cfg.Corpus, err)
	} else {
		log.Infof("Loaded %d reference personas from %s", len(entries), cfg.Corpus)
	}

	finishedShutDown := make(chan struct{})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(err)
		}
		done()
		close(finishedShutDown)
	}()

	if err := srv.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(err)
		os.Exit(1)
	}
	<-finishedShutDown
}
