package server

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/segmentio/ksuid"

	"personas/pkg/config"
	"personas/pkg/corpus"
	"personas/pkg/inference"
)

type Server struct {
	Echo   *echo.Echo
	Config config.Config
	Corpus *corpus.Loader

	// Inferencer and Synth are built from Config on each request when nil.
	Inferencer inference.Inferencer
	Synth      inference.Inferencer
}

func NewServer(cfg config.Config, loader *corpus.Loader) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return ksuid.New().String() },
	}))
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	if loader == nil {
		loader = corpus.NewLoader(nil, cfg.CorpusTTL)
	}

	s := &Server{
		Echo:   e,
		Config: cfg,
		Corpus: loader,
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)

	api := s.Echo.Group("/api")
	api.POST("/personas", s.handlePostPersonas)     // {url, count, type} -> []schema.Persona
	api.POST("/synthesize", s.handlePostSynthesize) // {persona, template} -> synth.Record
}

func (s *Server) Start(addr string) error {
	log.Info("server listening", "addr", addr, "provider", s.Config.Provider, "model", s.Config.Model())
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("shutting down server")
	return s.Echo.Shutdown(ctx)
}

func (s *Server) inferencer() (inference.Inferencer, error) {
	if s.Inferencer != nil {
		return s.Inferencer, nil
	}
	return inference.New(s.Config)
}

func (s *Server) synthInferencer() (inference.Inferencer, error) {
	if s.Synth != nil {
		return s.Synth, nil
	}
	return inference.NewSynth(s.Config)
}
