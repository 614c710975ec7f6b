package server

import (
	"cmp"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"personas/pkg/config"
	"personas/pkg/corpus"
	"personas/pkg/persona"
	"personas/pkg/utils"
)

// MaxPersonas caps a single request.
const MaxPersonas = 20

type personasReq struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
	Type  string `json:"type"`
}

// POST /api/personas
func (s *Server) handlePostPersonas(c echo.Context) error {
	var req personasReq
	if err := c.Bind(&req); err != nil {
		log.Error("invalid JSON in /api/personas", "error", err)
		return c.JSON(http.StatusBadRequest, utils.ErrJSON("invalid json"))
	}
	req.URL = strings.TrimSpace(req.URL)
	req.Count = cmp.Or(req.Count, 1)
	if req.Count < 1 || req.Count > MaxPersonas {
		return c.JSON(http.StatusBadRequest, utils.ErrJSON(fmt.Sprintf("count must be between 1 and %d", MaxPersonas)))
	}

	inf, err := s.inferencer()
	if err != nil {
		return c.JSON(statusFor(err), utils.ErrJSON(err.Error()))
	}

	gen := persona.New(inf, s.Corpus.Source(s.Config.Corpus, 0), persona.Config{
		Model:        s.Config.Model(),
		StrictSchema: s.Config.StrictSchema,
	}, s.Config.Rand())

	mode := corpus.ParseMode(req.Type)
	log.Info("generating personas", "request", c.Response().Header().Get(echo.HeaderXRequestID), "url", req.URL, "count", req.Count, "mode", mode)

	personas, err := gen.GenerateBatch(c.Request().Context(), req.URL, req.Count, mode)
	if err != nil {
		return c.JSON(statusFor(err), utils.ErrJSON(err.Error()))
	}
	return c.JSON(http.StatusOK, personas)
}

// statusFor maps configuration problems to 500 and everything the model caused to 502.
func statusFor(err error) int {
	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		return http.StatusInternalServerError
	}
	return http.StatusBadGateway
}
