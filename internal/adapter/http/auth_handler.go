package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"material-tracker/internal/adapter/middleware"
	"material-tracker/internal/usecase/auth"
)

type AuthHandler struct {
	uc  *auth.Usecase
	log *zap.Logger
}

func NewAuthHandler(uc *auth.Usecase, log *zap.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, log: log}
}

type workerLoginReq struct {
	Name     string `json:"name"      validate:"required,max=200"`
	WorkerID string `json:"worker_id" validate:"required,max=100"`
}

type requesterLoginReq struct {
	RequesterID string `json:"requester_id" validate:"required"`
	Password    string `json:"password"     validate:"required"`
}

type adminLoginReq struct {
	Name     string `json:"name"     validate:"required,max=200"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) LoginWorker(c echo.Context) error {
	var req workerLoginReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}
	dto, err := h.uc.LoginWorker(c.Request().Context(), req.Name, req.WorkerID)
	if err != nil {
		return writeError(c, h.log, err, "failed to log in")
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AuthHandler) LoginRequester(c echo.Context) error {
	var req requesterLoginReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}
	dto, err := h.uc.LoginRequester(c.Request().Context(), req.RequesterID, req.Password)
	if err != nil {
		return writeError(c, h.log, err, "failed to log in")
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AuthHandler) LoginAdmin(c echo.Context) error {
	var req adminLoginReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}
	dto, err := h.uc.LoginAdmin(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return writeError(c, h.log, err, "failed to log in")
	}
	return c.JSON(http.StatusOK, dto)
}

// Logout runs behind Auth.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.uc.Logout(c.Request().Context(), middleware.TokenFrom(c)); err != nil {
		return writeError(c, h.log, err, "failed to log out")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.ActorFrom(c))
}
