package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bettersg/checkmate/verdict/store"

	"github.com/labstack/echo/v4"
)

type GenericStatus struct {
	Daemon  string `json:"daemon"`
	Status  string `json:"status"`
	Message string `json:"msg,omitempty"`
}

func (srv *Server) errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	var errorMessage string
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		errorMessage = fmt.Sprintf("%s", he.Message)
	}
	if code >= 500 {
		srv.logger.Warn("checkmate-http-internal-error", "err", err)
	}
	c.JSON(code, GenericStatus{Status: "error", Daemon: "checkmate", Message: errorMessage})
}

func (srv *Server) HandleHealthCheck(c echo.Context) error {
	return c.JSON(200, GenericStatus{Status: "ok", Daemon: "checkmate"})
}

const profileWindow = 30 * 24 * time.Hour

func (srv *Server) HandleGetChecker(c echo.Context) error {
	checkerID := c.Param("checkerID")
	if checkerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing checker ID")
	}

	profile, err := srv.engine.ReviewerProfile(c.Request().Context(), checkerID, profileWindow)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("checker not found: %s", checkerID))
		}
		return fmt.Errorf("aggregating checker profile: %w", err)
	}
	return c.JSON(200, profile)
}
