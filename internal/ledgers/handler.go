package ledgers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tallydesk/tallydesk/internal/shared"
)

// Handler manages ledger endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.ParsePageRequest(r)
	req := ListRequest{
		Query:   r.URL.Query().Get("q"),
		Parent:  r.URL.Query().Get("group"),
		Page:    page,
		PerPage: perPage,
	}

	items, total, err := h.service.ListLedgers(r.Context(), req)
	if err != nil {
		h.logger.Error("list ledgers", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
		return
	}
	if items == nil {
		items = []Ledger{}
	}
	shared.RespondJSON(w, http.StatusOK, shared.ListResponse{
		Data:       items,
		Pagination: shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid ledger id")
		return
	}

	ledger, err := h.service.GetLedger(r.Context(), id)
	if errors.Is(err, shared.ErrNotFound) {
		shared.RespondError(w, http.StatusNotFound, "ledger not found")
		return
	}
	if err != nil {
		h.logger.Error("get ledger", slog.Any("error", err), slog.Int64("id", id))
		shared.RespondError(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
		return
	}
	shared.RespondJSON(w, http.StatusOK, ledger)
}
