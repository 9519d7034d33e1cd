package tallysync

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tallydesk/tallydesk/internal/shared"
)

// Enqueuer submits sync tasks to the background queue.
type Enqueuer interface {
	EnqueueSync(ctx context.Context) (string, error)
}

// Handler serves the sync endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	enqueuer Enqueuer
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, enqueuer Enqueuer) *Handler {
	return &Handler{logger: logger, service: service, enqueuer: enqueuer}
}

// MountRoutes registers sync routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.trigger)
	r.Get("/status", h.status)
}

// trigger enqueues a sync task; the worker picks it up. The dashboard polls
// /sync/status for the outcome.
func (h *Handler) trigger(w http.ResponseWriter, r *http.Request) {
	taskID, err := h.enqueuer.EnqueueSync(r.Context())
	if err != nil {
		h.logger.Error("enqueue sync", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
		return
	}
	shared.RespondJSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context())
	if err != nil {
		h.logger.Error("sync status", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
		return
	}
	shared.RespondJSON(w, http.StatusOK, status)
}
