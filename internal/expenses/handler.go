package expenses

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/gemlot/gemlot/internal/platform/httpx"
	"github.com/gemlot/gemlot/internal/shared"
)

// Handler manages expense and recurring-template endpoints.
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

// MountRoutes registers expense routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/bulk-delete", h.bulkDelete)
	r.Post("/bulk-recategorize", h.bulkRecategorize)

	r.Route("/templates", func(r chi.Router) {
		r.Get("/", h.listTemplates)
		r.Post("/", h.createTemplate)
		r.Get("/due", h.listDue)
		r.Get("/{id}", h.showTemplate)
		r.Patch("/{id}", h.updateTemplate)
		r.Delete("/{id}", h.deleteTemplate)
		r.Post("/{id}/materialize", h.materialize)
		r.Post("/{id}/pause", h.pause)
		r.Post("/{id}/resume", h.resume)
	})

	r.Get("/{id}", h.show)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrExpenseNotFound), errors.Is(err, ErrTemplateNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrNonPositiveAmount), errors.Is(err, ErrInvalidFrequency):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrTemplateInactive):
		httpx.Problem(w, http.StatusConflict, "Template Paused", err.Error())
	default:
		h.logger.Error("expenses", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	expense, template, err := h.service.CreateExpense(r.Context(), req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"expense":  expense,
		"template": template,
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	expense, err := h.service.GetExpense(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, expense)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	var req UpdateExpenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	expense, err := h.service.UpdateExpense(r.Context(), id, req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, expense)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	if err := h.service.DeleteExpense(r.Context(), id); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListExpensesRequest{Limit: 50}
	q := r.URL.Query()
	if v := q.Get("category"); v != "" {
		req.Category = &v
	}
	if v := q.Get("payment_method"); v != "" {
		pm := PaymentMethod(v)
		req.PaymentMethod = &pm
	}
	if v := q.Get("supplier_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.SupplierID = &id
		}
	}
	if v := q.Get("template_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.TemplateID = &id
		}
	}
	if v := q.Get("is_cogs"); v != "" {
		b := v == "true" || v == "1"
		req.IsCOGS = &b
	}
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
	items, total, err := h.service.ListExpenses(r.Context(), req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	totalVal := decimal.Zero
	for _, e := range items {
		totalVal = totalVal.Add(e.Amount)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"meta":       shared.PageFromOffset(req.Limit, req.Offset, total),
		"page_total": totalVal,
	})
}

func (h *Handler) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"results": h.service.BulkDelete(r.Context(), req),
	})
}

func (h *Handler) bulkRecategorize(w http.ResponseWriter, r *http.Request) {
	var req BulkRecategorizeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"results": h.service.BulkRecategorize(r.Context(), req),
	})
}

func (h *Handler) createTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	template, err := h.service.CreateTemplate(r.Context(), req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, template)
}

func (h *Handler) showTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	template, err := h.service.GetTemplate(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, template)
}

func (h *Handler) updateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	var req UpdateTemplateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	template, err := h.service.UpdateTemplate(r.Context(), id, req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, template)
}

func (h *Handler) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	if err := h.service.DeleteTemplate(r.Context(), id); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	items, err := h.service.ListTemplates(r.Context(), activeOnly)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) listDue(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now()
	if v := r.URL.Query().Get("as_of"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Date", "as_of must be YYYY-MM-DD")
			return
		}
		asOf = t
	}
	items, err := h.service.ListDue(r.Context(), asOf)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) materialize(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	expense, template, err := h.service.Materialize(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"expense":  expense,
		"template": template,
	})
}

func (h *Handler) pause(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) resume(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "")
		return
	}
	template, err := h.service.SetTemplateActive(r.Context(), id, active)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, template)
}
