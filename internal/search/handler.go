package search

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tallydesk/tallydesk/internal/shared"
)

// Handler serves the search endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers search routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.search)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("search", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
		return
	}
	shared.RespondJSON(w, http.StatusOK, result)
}
