package cities

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-oms/meridian-oms/internal/masterdata/shared"
	"github.com/meridian-oms/meridian-oms/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/by-name/{name}", h.GetByName)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/toggle", h.Toggle)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	filters := shared.ListFilters{
		Page:   page,
		Limit:  limit,
		Search: r.URL.Query().Get("search"),
	}
	if v := r.URL.Query().Get("active"); v != "" {
		active := v == "true"
		filters.IsActive = &active
	}

	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list cities failed", slog.Any("error", err))
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
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.NotFound(w, "city not found")
			return
		}
		h.logger.Error("get city failed", slog.Any("error", err))
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// GetByName resolves an active city by exact name, mirroring what the import
// pipeline sees for a row's City column.
func (h *Handler) GetByName(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetActiveByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.NotFound(w, "city not found or inactive")
			return
		}
		h.logger.Error("get city by name failed", slog.Any("error", err))
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.BadRequest(w, "invalid id")
		return
	}
	active := r.URL.Query().Get("active") == "true"
	if err := h.service.SetActive(r.Context(), id, active); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.NotFound(w, "city not found")
			return
		}
		h.logger.Error("toggle city failed", slog.Any("error", err))
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "is_active": active})
}
