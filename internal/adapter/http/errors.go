package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"tailoring-engine/internal/adapter/repository"
	"tailoring-engine/internal/domain"
	"tailoring-engine/internal/platform/apierr"
	"tailoring-engine/internal/platform/logger"
	"tailoring-engine/internal/usecase"
)

var errNoRenderer = errors.New("pdf export is not configured")

// toAPIError classifies err into a status and a stable code.
func toAPIError(err error) *apierr.Error {
	var (
		ae    *apierr.Error
		fe    *fiber.Error
		aiErr *usecase.AIError
	)
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.As(err, &fe):
		return apierr.New(fe.Code, "http", err)
	case usecase.IsValidation(err):
		return apierr.New(fiber.StatusBadRequest, "validation", err)
	case errors.Is(err, usecase.ErrEmptyContent):
		return apierr.New(fiber.StatusBadRequest, "empty_content", err)
	case errors.Is(err, usecase.ErrNoInstructions):
		return apierr.New(fiber.StatusBadRequest, "no_instructions", err)
	case errors.Is(err, usecase.ErrFeedbackRequired):
		return apierr.New(fiber.StatusBadRequest, "feedback_required", err)
	case errors.Is(err, usecase.ErrJobNotFound):
		return apierr.New(fiber.StatusNotFound, "job_not_found", err)
	case errors.Is(err, usecase.ErrProfileNotFound):
		return apierr.New(fiber.StatusNotFound, "profile_not_found", err)
	case errors.Is(err, repository.ErrNotFound):
		return apierr.New(fiber.StatusNotFound, "not_found", err)
	case errors.Is(err, usecase.ErrBusy):
		return apierr.New(fiber.StatusConflict, "busy", err)
	case errors.Is(err, usecase.ErrRegenerateInFlight):
		return apierr.New(fiber.StatusConflict, "regenerate_in_flight", err)
	case errors.Is(err, usecase.ErrNotReady):
		return apierr.New(fiber.StatusConflict, "not_ready", err)
	case errors.Is(err, usecase.ErrSessionReset):
		return apierr.New(fiber.StatusConflict, "session_reset", err)
	case errors.Is(err, errNoRenderer):
		return apierr.New(fiber.StatusNotImplemented, "pdf_disabled", err)
	case errors.Is(err, usecase.ErrInvalidImproveOutput), errors.Is(err, domain.ErrIncompleteSpeech), errors.As(err, &aiErr):
		return apierr.New(fiber.StatusBadGateway, "ai_failed", err)
	}
	return apierr.New(fiber.StatusInternalServerError, "internal", err)
}

// ErrorHandler is installed as the fiber.Config ErrorHandler.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx, err error) error {
		apiErr := toAPIError(err)
		if apiErr.Status >= fiber.StatusInternalServerError {
			log.Error("request failed", "method", c.Method(), "path", c.Path(), "status", apiErr.Status, "error", err)
		}
		return c.Status(apiErr.Status).JSON(fiber.Map{"error": err.Error(), "code": apiErr.Code})
	}
}
