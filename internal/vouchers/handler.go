package vouchers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tallydesk/tallydesk/internal/shared"
	"github.com/tallydesk/tallydesk/internal/tally"
)

// Handler manages voucher endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers voucher routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.ParsePageRequest(r)
	req := ListRequest{
		Type:    r.URL.Query().Get("type"),
		Party:   r.URL.Query().Get("party"),
		Page:    page,
		PerPage: perPage,
	}
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			shared.RespondError(w, http.StatusBadRequest, "invalid from date, want YYYY-MM-DD")
			return
		}
		req.From = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			shared.RespondError(w, http.StatusBadRequest, "invalid to date, want YYYY-MM-DD")
			return
		}
		req.To = t
	}

	items, total, err := h.service.ListVouchers(r.Context(), req)
	if err != nil {
		h.logger.Error("list vouchers", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
		return
	}
	if items == nil {
		items = []Voucher{}
	}
	shared.RespondJSON(w, http.StatusOK, shared.ListResponse{
		Data:       items,
		Pagination: shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid voucher id")
		return
	}

	voucher, err := h.service.GetVoucher(r.Context(), id)
	if errors.Is(err, shared.ErrNotFound) {
		shared.RespondError(w, http.StatusNotFound, "voucher not found")
		return
	}
	if err != nil {
		h.logger.Error("get voucher", slog.Any("error", err), slog.Int64("id", id))
		shared.RespondError(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
		return
	}
	shared.RespondJSON(w, http.StatusOK, voucher)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateVoucherRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	created, err := h.service.CreateVoucher(r.Context(), req, r.Header.Get("X-Idempotency-Key"))
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidVoucher):
		shared.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, shared.ErrIdempotencyConflict):
		shared.RespondError(w, http.StatusConflict, shared.UserSafeMessage(err))
		return
	case errors.Is(err, shared.ErrGatewayUnavailable):
		shared.RespondError(w, http.StatusBadGateway, shared.UserSafeMessage(err))
		return
	default:
		var importErr *tally.ImportError
		if errors.As(err, &importErr) {
			shared.RespondError(w, http.StatusUnprocessableEntity, importErr.Message)
			return
		}
		h.logger.Error("create voucher", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
		return
	}

	shared.RespondJSON(w, http.StatusCreated, created)
}
