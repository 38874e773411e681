package orders

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-oms/meridian-oms/internal/platform/httpx"
)

type Handler struct {
	logger *slog.Logger
	repo   Repository
}

func NewHandler(logger *slog.Logger, repo Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{Limit: 25}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			filters.Limit = limit
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset > 0 {
			filters.Offset = offset
		}
	}
	if v := r.URL.Query().Get("assigned_to"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filters.AssignedTo = &id
		}
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := OrderStatus(v)
		filters.Status = &status
	}
	filters.Channel = r.URL.Query().Get("channel")

	items, total, err := h.repo.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list orders failed", slog.Any("error", err))
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.BadRequest(w, "invalid id")
		return
	}
	o, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.NotFound(w, "order not found")
			return
		}
		h.logger.Error("get order failed", slog.Any("error", err))
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}
