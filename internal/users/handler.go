package users

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
	// The console's handler-pool picker lists active operators from here.
	r.Get("/active", h.ListActive)
	r.Get("/{id}", h.Get)
}

func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListActive(r.Context())
	if err != nil {
		h.logger.Error("list active users failed", slog.Any("error", err))
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.BadRequest(w, "invalid id")
		return
	}
	u, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.NotFound(w, "user not found")
			return
		}
		h.logger.Error("get user failed", slog.Any("error", err))
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}
