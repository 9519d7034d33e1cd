package gst

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tallydesk/tallydesk/internal/shared"
)

// Handler serves the GST validation and tax-split endpoints.
type Handler struct {
	logger *slog.Logger
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// MountRoutes registers GST routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/validate", h.validate)
	r.Post("/tax", h.tax)
}

type validateRequest struct {
	GSTIN string `json:"gstin"`
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	// Invalid GSTINs are a normal outcome, not an error status; the result
	// carries the reason.
	shared.RespondJSON(w, http.StatusOK, ValidateGSTIN(req.GSTIN))
}

type taxRequest struct {
	Amount       string `json:"amount"`
	PartyGSTIN   string `json:"party_gstin"`
	CompanyGSTIN string `json:"company_gstin"`
	TaxRate      string `json:"tax_rate"`
}

type taxResponse struct {
	Amount decimal.Decimal `json:"amount"`
	Rate   decimal.Decimal `json:"tax_rate"`
	TaxSplit
}

func (h *Handler) tax(w http.ResponseWriter, r *http.Request) {
	var req taxRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		shared.RespondError(w, http.StatusUnprocessableEntity, "amount must be a decimal number")
		return
	}
	rate, err := decimal.NewFromString(req.TaxRate)
	if err != nil {
		shared.RespondError(w, http.StatusUnprocessableEntity, "tax_rate must be a decimal number")
		return
	}

	split, err := CalculateTax(amount, req.PartyGSTIN, req.CompanyGSTIN, rate)
	if err != nil {
		shared.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	shared.RespondJSON(w, http.StatusOK, taxResponse{Amount: amount, Rate: rate, TaxSplit: split})
}
