package customers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

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
	r.Get("/{id}", h.Get)
	r.Get("/lookup", h.Lookup)
	r.Post("/", h.Create)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.BadRequest(w, "invalid id")
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.NotFound(w, "customer not found")
			return
		}
		h.logger.Error("get customer failed", slog.Any("error", err))
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Lookup finds existing customers by phone and, optionally, email.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	if phone == "" {
		httpx.BadRequest(w, "phone is required")
		return
	}
	matches, err := h.service.FindByPhoneOrEmail(r.Context(), phone, r.URL.Query().Get("email"))
	if err != nil {
		h.logger.Error("customer lookup failed", slog.Any("error", err))
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": matches})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, "invalid JSON body")
		return
	}

	createdBy, _ := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)

	c, err := h.service.Create(r.Context(), req, createdBy)
	if err != nil {
		var verr validator.ValidationErrors
		if errors.As(err, &verr) {
			httpx.BadRequest(w, verr.Error())
			return
		}
		if errors.Is(err, ErrAlreadyExists) {
			httpx.Conflict(w, "customer with this phone already exists")
			return
		}
		h.logger.Error("create customer failed", slog.Any("error", err))
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}
