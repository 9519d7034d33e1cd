package audit

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tallydesk/tallydesk/internal/shared"
)

// Handler serves the compliance endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers compliance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/compliance", h.runScan)
	r.Get("/runs", h.listRuns)
	r.Get("/runs/{id}", h.getRun)
}

func (h *Handler) runScan(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.RunScan(r.Context())
	if err != nil {
		h.logger.Error("compliance scan", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
		return
	}
	shared.RespondJSON(w, http.StatusCreated, run)
}

func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.service.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.Error("list compliance runs", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
		return
	}
	shared.RespondJSON(w, http.StatusOK, runs)
}

func (h *Handler) getRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid run id")
		return
	}
	run, err := h.service.GetRun(r.Context(), id)
	if errors.Is(err, shared.ErrNotFound) {
		shared.RespondError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		h.logger.Error("get compliance run", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
		return
	}
	shared.RespondJSON(w, http.StatusOK, run)
}
