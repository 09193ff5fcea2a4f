package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gemlot/gemlot/internal/platform/httpx"
)

// Handler manages reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/pnl", h.pnl)
	r.Get("/consignment", h.consignment)
}

// periodParams parses from/to query dates. Default is the current calendar
// month; to is exclusive.
func periodParams(r *http.Request) (time.Time, time.Time, bool) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return from, to, false
		}
		from = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return from, to, false
		}
		to = t
	}
	if !to.After(from) {
		return from, to, false
	}
	return from, to, true
}

func (h *Handler) pnl(w http.ResponseWriter, r *http.Request) {
	from, to, ok := periodParams(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", "from/to must be YYYY-MM-DD with to after from")
		return
	}
	report, err := h.service.PnL(r.Context(), from, to)
	if err != nil {
		h.logger.Error("reports", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) consignment(w http.ResponseWriter, r *http.Request) {
	from, to, ok := periodParams(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", "from/to must be YYYY-MM-DD with to after from")
		return
	}
	summary, err := h.service.Consignment(r.Context(), from, to)
	if err != nil {
		h.logger.Error("reports", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}
