package pos

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/gemlot/gemlot/internal/platform/httpx"
	"github.com/gemlot/gemlot/internal/shared"
)

// Handler manages POS endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers POS routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/checkout", h.checkout)
	r.Get("/sales", h.listSales)
	r.Get("/sales/{id}", h.showSale)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSaleNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrApprovalRequired):
		httpx.RespondError(w, httpx.ErrApprovalRequired)
	case errors.Is(err, shared.ErrApprovalDenied):
		httpx.Problem(w, http.StatusForbidden, "Approval Denied", "owner PIN rejected")
	case errors.Is(err, ErrUnknownPayment), errors.Is(err, ErrNegativeAllowance):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrProductUnavailable):
		httpx.Problem(w, http.StatusConflict, "Stock Conflict", err.Error())
	default:
		h.logger.Error("pos", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sale, err := h.service.Checkout(r.Context(), req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) showSale(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	sale, err := h.service.GetSale(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	req := ListSalesRequest{Limit: 50}
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			req.From = &t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			req.To = &t
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			req.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			req.Offset = n
		}
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sales, total, err := h.service.ListSales(r.Context(), req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items": sales,
		"meta":  shared.PageFromOffset(req.Limit, req.Offset, total),
	})
}
