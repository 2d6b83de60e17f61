package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vocardo/vocardo/internal/srs"
	"github.com/vocardo/vocardo/internal/verify"
)

type enrollRequest struct {
	LearnerID string `json:"learner_id"`
	ItemID    string `json:"item_id"`
}

type reviewRequest struct {
	Rating    int   `json:"rating"`
	LatencyMs int64 `json:"latency_ms"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) enrollCard(c echo.Context) error {
	var req enrollRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed body")
	}
	card, err := s.engine.EnrollCard(c.Request().Context(), req.LearnerID, req.ItemID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, card)
}

func (s *Server) submitReview(c echo.Context) error {
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed body")
	}
	res, err := s.engine.SubmitReview(c.Request().Context(), c.Param("id"), srs.Rating(req.Rating), req.LatencyMs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) reviewHistory(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	events, err := s.engine.ReviewHistory(c.Request().Context(), c.Param("id"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

func (s *Server) dueCards(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	due, err := s.engine.DueCards(c.Request().Context(), c.Param("id"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, due)
}

func (s *Server) nextItem(c echo.Context) error {
	view, err := s.engine.NextItem(c.Request().Context(), c.Param("id"), c.QueryParam("concept_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) assignment(c echo.Context) error {
	a, err := s.engine.Assignment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (s *Server) migrate(c echo.Context) error {
	res, err := s.engine.MigrateToMemory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) submitAnswer(c echo.Context) error {
	var req verify.AnswerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed body")
	}
	res, err := s.engine.SubmitItemAnswer(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) flaggedItems(c echo.Context) error {
	items, err := s.engine.FlaggedItems(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// errorHandler maps engine sentinels to status codes: validation 400,
// not found 404, conflict 409, not eligible 422.
func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "internal error"

		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(status)
			}
		case errors.Is(err, verify.ErrValidation):
			status = http.StatusBadRequest
			msg = err.Error()
		case errors.Is(err, verify.ErrNotFound):
			status = http.StatusNotFound
			msg = err.Error()
		case errors.Is(err, verify.ErrConflict):
			status = http.StatusConflict
			msg = err.Error()
		case errors.Is(err, verify.ErrNotEligible):
			status = http.StatusUnprocessableEntity
			msg = err.Error()
		default:
			logger.Error("request failed", "err", err, "uri", c.Request().RequestURI)
		}

		if err := c.JSON(status, errorResponse{Error: msg}); err != nil {
			logger.Error("write error response", "err", err)
		}
	}
}
