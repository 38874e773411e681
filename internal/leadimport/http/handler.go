// Package http exposes the lead import endpoints. Upload transport is the
// console's concern: these handlers consume the CSV byte stream they are
// handed and return the structured outcome.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/meridian-oms/meridian-oms/internal/leadimport"
	"github.com/meridian-oms/meridian-oms/internal/platform/httpx"
)

// Enqueuer schedules a staged lead file for background processing and
// returns the run id to poll.
type Enqueuer interface {
	EnqueueLeadImport(ctx context.Context, filePath string, importerID int64, handlerIDs []int64) (string, error)
}

type Handler struct {
	logger        *slog.Logger
	service       *leadimport.Service
	runs          *leadimport.RunStore
	enqueuer      Enqueuer
	ratePerMinute int
}

func NewHandler(logger *slog.Logger, service *leadimport.Service, runs *leadimport.RunStore, enqueuer Enqueuer, ratePerMinute int) *Handler {
	if ratePerMinute <= 0 {
		ratePerMinute = 10
	}
	return &Handler{logger: logger, service: service, runs: runs, enqueuer: enqueuer, ratePerMinute: ratePerMinute}
}

func (h *Handler) MountRoutes(r chi.Router) {
	limit := httprate.Limit(h.ratePerMinute, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))
	r.With(limit).Post("/leads", h.ImportLeads)
	r.With(limit).Post("/leads/async", h.EnqueueLeads)
	r.Get("/leads/runs/{runID}", h.GetRun)
}

// ImportLeads runs the batch synchronously against the request body and
// returns the outcome.
func (h *Handler) ImportLeads(w http.ResponseWriter, r *http.Request) {
	importerID, ok := callerID(r)
	if !ok {
		httpx.BadRequest(w, "missing or invalid X-User-ID header")
		return
	}
	handlerIDs, err := parseHandlerIDs(r.URL.Query().Get("handlers"))
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}

	outcome, err := h.service.Import(r.Context(), leadimport.ImportRequest{
		Reader:     r.Body,
		ImporterID: importerID,
		HandlerIDs: handlerIDs,
	})
	if err != nil {
		h.respondBatchError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success_count": outcome.SuccessCount,
		"error_count":   outcome.ErrorCount,
		"errors":        outcome.Messages(),
	})
}

type asyncImportRequest struct {
	FilePath   string  `json:"file_path"`
	HandlerIDs []int64 `json:"handler_ids"`
}

// EnqueueLeads schedules a previously staged file for background import.
func (h *Handler) EnqueueLeads(w http.ResponseWriter, r *http.Request) {
	if h.enqueuer == nil {
		httpx.Unavailable(w, "background imports are not configured")
		return
	}
	importerID, ok := callerID(r)
	if !ok {
		httpx.BadRequest(w, "missing or invalid X-User-ID header")
		return
	}

	var req asyncImportRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, "invalid JSON body")
		return
	}
	if req.FilePath == "" {
		httpx.BadRequest(w, "file_path is required")
		return
	}
	if len(req.HandlerIDs) == 0 {
		httpx.BadRequest(w, "handler_ids must not be empty")
		return
	}

	runID, err := h.enqueuer.EnqueueLeadImport(r.Context(), req.FilePath, importerID, req.HandlerIDs)
	if err != nil {
		h.logger.Error("enqueue lead import failed", slog.Any("error", err))
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"run_id": runID})
}

// GetRun returns the stored state of a background import run.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		httpx.Unavailable(w, "background imports are not configured")
		return
	}
	run, err := h.runs.Get(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		if errors.Is(err, leadimport.ErrRunNotFound) {
			httpx.NotFound(w, "import run not found")
			return
		}
		h.logger.Error("get import run failed", slog.Any("error", err))
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, run)
}

func (h *Handler) respondBatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, leadimport.ErrSchemaMismatch),
		errors.Is(err, leadimport.ErrEmptyFile),
		errors.Is(err, leadimport.ErrNoHandlers),
		errors.Is(err, leadimport.ErrInvalidHandlers):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Import Rejected", err.Error())
	default:
		h.logger.Error("lead import failed", slog.Any("error", err))
		httpx.Internal(w)
	}
}

func callerID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	return id, err == nil && id > 0
}

func parseHandlerIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("handlers query parameter is required")
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			return nil, errors.New("handlers must be a comma separated list of operator ids")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
