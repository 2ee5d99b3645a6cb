package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"material-tracker/internal/adapter/middleware"
	"material-tracker/internal/usecase/requester"
)

type RequesterHandler struct {
	uc  *requester.Usecase
	log *zap.Logger
}

func NewRequesterHandler(uc *requester.Usecase, log *zap.Logger) *RequesterHandler {
	return &RequesterHandler{uc: uc, log: log}
}

type createRequesterReq struct {
	RequesterID string `json:"requester_id" validate:"required,max=100"`
	Name        string `json:"name"         validate:"required,max=200"`
	Password    string `json:"password"     validate:"required,max=72"`
}

// an empty password keeps the current one
type updateRequesterReq struct {
	RequesterID string `json:"requester_id" validate:"required,max=100"`
	Name        string `json:"name"         validate:"required,max=200"`
	Password    string `json:"password"     validate:"max=72"`
}

func (h *RequesterHandler) List(c echo.Context) error {
	rows, err := h.uc.List(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return writeError(c, h.log, err, "failed to load requesters")
	}
	return c.JSON(http.StatusOK, map[string]any{"items": rows})
}

func (h *RequesterHandler) Create(c echo.Context) error {
	var req createRequesterReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}
	r, err := h.uc.Create(c.Request().Context(), middleware.ActorFrom(c), requester.CreateInput(req))
	if err != nil {
		return writeError(c, h.log, err, "failed to create requester")
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *RequesterHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id path param"})
	}
	var req updateRequesterReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}
	r, err := h.uc.Update(c.Request().Context(), middleware.ActorFrom(c), id, requester.UpdateInput(req))
	if err != nil {
		return writeError(c, h.log, err, "failed to update requester")
	}
	return c.JSON(http.StatusOK, r)
}

func (h *RequesterHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id path param"})
	}
	if err := h.uc.Delete(c.Request().Context(), middleware.ActorFrom(c), id); err != nil {
		return writeError(c, h.log, err, "failed to delete requester")
	}
	return c.NoContent(http.StatusNoContent)
}
