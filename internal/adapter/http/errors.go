package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"material-tracker/internal/domain/actor"
	"material-tracker/internal/domain/reference"
	"material-tracker/internal/domain/requester"
	"material-tracker/internal/domain/transaction"
	"material-tracker/internal/infrastructure/logger"
	"material-tracker/internal/usecase/auth"
)

const validationPrefix = "validation failed: "

// statusOf maps domain errors to HTTP codes. Zero means "unexpected".
func statusOf(err error) int {
	switch {
	case errors.Is(err, actor.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, requester.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, transaction.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, transaction.ErrNotFound),
		errors.Is(err, requester.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, transaction.ErrInvalidTransition),
		errors.Is(err, transaction.ErrAlreadyDecided),
		errors.Is(err, transaction.ErrNotPending),
		errors.Is(err, transaction.ErrConcurrentUpdate),
		errors.Is(err, transaction.ErrTakeHasReturns),
		errors.Is(err, requester.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, transaction.ErrValidation),
		errors.Is(err, transaction.ErrInvalidType),
		errors.Is(err, requester.ErrMissingFields),
		errors.Is(err, reference.ErrBatchSize):
		return http.StatusUnprocessableEntity
	case errors.Is(err, reference.ErrExhausted):
		return http.StatusServiceUnavailable
	}
	return 0
}

// writeError answers with the mapped status. Unexpected errors are logged
// and hidden behind generic, e.g. "failed to submit".
func writeError(c echo.Context, log *zap.Logger, err error, generic string) error {
	code := statusOf(err)
	if code == 0 {
		logger.FromContext(c.Request().Context(), log).Error(generic,
			zap.String("path", c.Path()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: generic})
	}
	msg := strings.TrimPrefix(err.Error(), validationPrefix)
	resp := ErrorResponse{Error: msg}
	if code == http.StatusUnprocessableEntity {
		resp.Details = detailsOf(err)
	}
	return c.JSON(code, resp)
}

func detailsOf(err error) []FieldError {
	var (
		over *transaction.OverReturnError
		ref  *transaction.ReferenceError
		line *transaction.LineError
	)
	switch {
	case errors.As(err, &over):
		return []FieldError{{Field: "materials", Message: over.Error()}}
	case errors.As(err, &ref):
		return []FieldError{{Field: "reference_number", Message: ref.Error()}}
	case errors.As(err, &line):
		return []FieldError{{Field: "materials", Message: line.Error()}}
	}
	return nil
}

func bindError(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
}

func validationError(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Details: ToFieldErrors(err),
	})
}
