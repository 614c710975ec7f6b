package server

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"personas/pkg/synth"
	"personas/pkg/utils"
)

type synthesizeReq struct {
	Persona  string `json:"persona"`
	Template string `json:"template"`
}

// POST /api/synthesize
func (s *Server) handlePostSynthesize(c echo.Context) error {
	var req synthesizeReq
	if err := c.Bind(&req); err != nil {
		log.Error("invalid JSON in /api/synthesize", "error", err)
		return c.JSON(http.StatusBadRequest, utils.ErrJSON("invalid json"))
	}
	if strings.TrimSpace(req.Persona) == "" {
		return c.JSON(http.StatusBadRequest, utils.ErrJSON("persona is required"))
	}
	tmpl, err := synth.ParseTemplate(req.Template)
	if err != nil {
		return c.JSON(http.StatusBadRequest, utils.ErrJSON(err.Error()))
	}

	inf, err := s.synthInferencer()
	if err != nil {
		return c.JSON(statusFor(err), utils.ErrJSON(err.Error()))
	}

	rec, err := synth.New(inf, tmpl).Synthesize(c.Request().Context(), req.Persona)
	if err != nil {
		log.Warn("synthesis failed", "template", tmpl, "error", err)
		return c.JSON(statusFor(err), utils.ErrJSON(err.Error()))
	}
	return c.JSON(http.StatusOK, rec)
}
