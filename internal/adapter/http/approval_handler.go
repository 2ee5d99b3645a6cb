package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"material-tracker/internal/adapter/middleware"
	"material-tracker/internal/domain/transaction"
	"material-tracker/internal/usecase/approval"
	"material-tracker/internal/usecase/report"
)

// ApprovalHandler serves the admin dashboard.
type ApprovalHandler struct {
	uc  *approval.Usecase
	rep *report.Usecase
	log *zap.Logger
	now func() time.Time
}

func NewApprovalHandler(uc *approval.Usecase, rep *report.Usecase, log *zap.Logger) *ApprovalHandler {
	return &ApprovalHandler{uc: uc, rep: rep, log: log, now: time.Now}
}

type passwordReq struct {
	Password string `json:"password" validate:"required"`
}

func (h *ApprovalHandler) Approve(c echo.Context) error {
	return h.decide(c, transaction.StatusApproved)
}

func (h *ApprovalHandler) Decline(c echo.Context) error {
	return h.decide(c, transaction.StatusDeclined)
}

func (h *ApprovalHandler) decide(c echo.Context, d transaction.Status) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing id path param"})
	}
	t, err := h.uc.Decide(c.Request().Context(), middleware.ActorFrom(c), id, d)
	if err != nil {
		return writeError(c, h.log, err, "failed to update")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *ApprovalHandler) Delete(c echo.Context) error {
	var req passwordReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}
	if err := h.uc.Delete(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"), req.Password); err != nil {
		return writeError(c, h.log, err, "failed to delete")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ApprovalHandler) DeleteAll(c echo.Context) error {
	var req passwordReq
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}
	n, err := h.uc.DeleteAll(c.Request().Context(), middleware.ActorFrom(c), req.Password)
	if err != nil {
		return writeError(c, h.log, err, "failed to delete")
	}
	return c.JSON(http.StatusOK, map[string]int64{"deleted": n})
}

func (h *ApprovalHandler) Summary(c echo.Context) error {
	s, err := h.rep.Summary(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return writeError(c, h.log, err, "failed to load summary")
	}
	return c.JSON(http.StatusOK, s)
}

// Export streams the filtered rows as an xlsx workbook.
func (h *ApprovalHandler) Export(c echo.Context) error {
	f, err := bindFilter(c)
	if err != nil {
		return filterError(c, err)
	}
	var buf bytes.Buffer
	if err := h.rep.Export(c.Request().Context(), middleware.ActorFrom(c), f, &buf); err != nil {
		return writeError(c, h.log, err, "failed to export")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", report.ExportFilename(h.now())))
	return c.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
}

// BulkReceipt renders every filtered transaction into one printable page.
func (h *ApprovalHandler) BulkReceipt(c echo.Context) error {
	f, err := bindFilter(c)
	if err != nil {
		return filterError(c, err)
	}
	var buf bytes.Buffer
	if err := h.rep.BulkReceipt(c.Request().Context(), middleware.ActorFrom(c), f, &buf); err != nil {
		return writeError(c, h.log, err, "failed to render receipts")
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
