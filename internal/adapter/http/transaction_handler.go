package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"material-tracker/internal/adapter/middleware"
	"material-tracker/internal/domain/actor"
	"material-tracker/internal/domain/transaction"
	"material-tracker/internal/usecase/report"
	"material-tracker/internal/usecase/request"
)

// TransactionHandler serves the worker side: submissions, history, lookup
// and receipts. Admins may use the read routes too.
type TransactionHandler struct {
	req *request.Usecase
	rep *report.Usecase
	log *zap.Logger
}

func NewTransactionHandler(req *request.Usecase, rep *report.Usecase, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{req: req, rep: rep, log: log}
}

type materialReq struct {
	Name            string `json:"name"             validate:"max=200"`
	Unit            string `json:"unit"             validate:"max=30"`
	Quantity        int    `json:"quantity"         validate:"gte=0"`
	ReferenceNumber string `json:"reference_number" validate:"omitempty,refno"`
	ReturnQuantity  int    `json:"return_quantity"  validate:"gte=0"`
}

type submitReq struct {
	// only honored for admin callers
	WorkerName      string        `json:"worker_name"      validate:"max=200"`
	WorkerID        string        `json:"worker_id"        validate:"max=100"`
	TransactionDate string        `json:"transaction_date" validate:"omitempty,datetime=2006-01-02"`
	TransactionTime string        `json:"transaction_time" validate:"omitempty,hhmm"`
	Materials       []materialReq `json:"materials"        validate:"required,min=1,max=100,dive"`
	Notes           string        `json:"notes"            validate:"max=2000"`
}

func (r submitReq) input() request.SubmitInput {
	in := request.SubmitInput{
		WorkerName:      r.WorkerName,
		WorkerID:        r.WorkerID,
		TransactionDate: r.TransactionDate,
		TransactionTime: r.TransactionTime,
		Notes:           r.Notes,
		Materials:       make([]request.MaterialInput, len(r.Materials)),
	}
	for i, m := range r.Materials {
		in.Materials[i] = request.MaterialInput(m)
	}
	return in
}

// listQuery carries the dashboard filters.
type listQuery struct {
	Type        string `query:"type"         validate:"omitempty,oneof=take return"`
	Status      string `query:"status"       validate:"omitempty,oneof=pending approved declined"`
	DateFrom    string `query:"date_from"    validate:"omitempty,datetime=2006-01-02"`
	DateTo      string `query:"date_to"      validate:"omitempty,datetime=2006-01-02"`
	WorkerID    string `query:"worker_id"`
	Search      string `query:"search"`
	Preset      string `query:"preset"`
	ReturnState string `query:"return_state"`
}

func (q listQuery) filter() report.Filter {
	return report.Filter{
		Type:        transaction.Type(q.Type),
		Status:      transaction.Status(q.Status),
		DateFrom:    q.DateFrom,
		DateTo:      q.DateTo,
		WorkerID:    q.WorkerID,
		Search:      q.Search,
		Preset:      q.Preset,
		ReturnState: q.ReturnState,
	}
}

func bindFilter(c echo.Context) (report.Filter, error) {
	var q listQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return report.Filter{}, err
	}
	if err := c.Validate(&q); err != nil {
		return report.Filter{}, err
	}
	return q.filter(), nil
}

func filterError(c echo.Context, err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return validationError(c, err)
	}
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query"})
}

type submitFunc func(ctx context.Context, a actor.Actor, in request.SubmitInput) (*transaction.Transaction, error)

func (h *TransactionHandler) SubmitTake(c echo.Context) error {
	return h.submit(c, h.req.SubmitTake)
}

func (h *TransactionHandler) SubmitReturn(c echo.Context) error {
	return h.submit(c, h.req.SubmitReturn)
}

func (h *TransactionHandler) submit(c echo.Context, do submitFunc) error {
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}
	t, err := do(c.Request().Context(), middleware.ActorFrom(c), req.input())
	if err != nil {
		return writeError(c, h.log, err, "failed to submit")
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *TransactionHandler) Edit(c echo.Context) error {
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}
	t, err := h.req.Edit(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"), req.input())
	if err != nil {
		return writeError(c, h.log, err, "failed to update")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *TransactionHandler) Delete(c echo.Context) error {
	if err := h.req.Delete(c.Request().Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		return writeError(c, h.log, err, "failed to delete")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TransactionHandler) Get(c echo.Context) error {
	t, err := h.req.Get(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		return writeError(c, h.log, err, "failed to load transaction")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *TransactionHandler) List(c echo.Context) error {
	f, err := bindFilter(c)
	if err != nil {
		return filterError(c, err)
	}
	rows, err := h.rep.List(c.Request().Context(), middleware.ActorFrom(c), f)
	if err != nil {
		return writeError(c, h.log, err, "failed to load transactions")
	}
	return c.JSON(http.StatusOK, map[string]any{"items": rows, "count": len(rows)})
}

// Lookup backs the return form auto-fill.
func (h *TransactionHandler) Lookup(c echo.Context) error {
	av, err := h.req.Lookup(c.Request().Context(), middleware.ActorFrom(c), c.Param("ref"))
	if err != nil {
		return writeError(c, h.log, err, "failed to look up reference number")
	}
	return c.JSON(http.StatusOK, av)
}

func (h *TransactionHandler) History(c echo.Context) error {
	entries, err := h.rep.ReturnHistory(c.Request().Context(), middleware.ActorFrom(c), c.Param("ref"))
	if err != nil {
		return writeError(c, h.log, err, "failed to load return history")
	}
	return c.JSON(http.StatusOK, map[string]any{"reference_number": c.Param("ref"), "items": entries})
}

func (h *TransactionHandler) Receipt(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.rep.Receipt(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"), &buf); err != nil {
		return writeError(c, h.log, err, "failed to render receipt")
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
