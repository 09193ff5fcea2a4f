package consignment

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gemlot/gemlot/internal/platform/httpx"
	"github.com/gemlot/gemlot/internal/shared"
)

// Handler manages consignment settlement endpoints.
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

// MountRoutes registers consignment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/balances", h.balances)
	r.Get("/{id}", h.show)
	r.Patch("/{id}", h.update)
	r.Post("/{id}/mark-paid", h.markPaid)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSettlementNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrAlreadySettled):
		httpx.Problem(w, http.StatusConflict, "Already Settled", err.Error())
	default:
		h.logger.Error("consignment", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateSettlementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	settlement, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, settlement)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	settlement, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, settlement)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	var req UpdateSettlementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	settlement, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, settlement)
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	settlement, err := h.service.MarkPaid(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, settlement)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListSettlementsRequest{Limit: 50}
	q := r.URL.Query()
	if v := q.Get("supplier_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.SupplierID = &id
		}
	}
	if v := q.Get("status"); v != "" {
		status := SettlementStatus(v)
		req.Status = &status
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
	items, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items": items,
		"meta":  shared.PageFromOffset(req.Limit, req.Offset, total),
	})
}

func (h *Handler) balances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.service.SupplierBalances(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": balances})
}
