package reports

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tallydesk/tallydesk/internal/shared"
)

// Handler serves the report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes. Every report has a JSON route and a
// .csv variant for download.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/sales-register", h.salesRegister(false))
	r.Get("/sales-register.csv", h.salesRegister(true))
	r.Get("/purchase-register", h.purchaseRegister(false))
	r.Get("/purchase-register.csv", h.purchaseRegister(true))
	r.Get("/cash-book", h.cashBook(false))
	r.Get("/cash-book.csv", h.cashBook(true))
	r.Get("/balance-sheet", h.balanceSheet(false))
	r.Get("/balance-sheet.csv", h.balanceSheet(true))
	r.Get("/gst-summary", h.gstSummary(false))
	r.Get("/gst-summary.csv", h.gstSummary(true))
	r.Get("/day-book", h.dayBook(false))
	r.Get("/day-book.csv", h.dayBook(true))
}

// parseRange reads the mandatory from/to query parameters.
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid from date, want YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid to date, want YYYY-MM-DD")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to date before from date")
	}
	return from, to, nil
}

func (h *Handler) salesRegister(asCSV bool) http.HandlerFunc {
	return h.register(asCSV, "sales-register", h.service.SalesRegister)
}

func (h *Handler) purchaseRegister(asCSV bool) http.HandlerFunc {
	return h.register(asCSV, "purchase-register", h.service.PurchaseRegister)
}

func (h *Handler) register(asCSV bool, name string, build func(ctx context.Context, from, to time.Time, rate decimal.Decimal) (Register, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := parseRange(r)
		if err != nil {
			shared.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		rate, err := h.service.ResolveRate(r.URL.Query().Get("rate"))
		if err != nil {
			shared.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		reg, err := build(r.Context(), from, to, rate)
		if err != nil {
			h.logger.Error(name, slog.Any("error", err))
			shared.RespondError(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
			return
		}
		if asCSV {
			h.writeCSV(w, name, func(w0 io.Writer) error { return WriteRegisterCSV(w0, reg) })
			return
		}
		shared.RespondJSON(w, http.StatusOK, reg)
	}
}

func (h *Handler) cashBook(asCSV bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := parseRange(r)
		if err != nil {
			shared.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		book, err := h.service.CashBook(r.Context(), from, to)
		if err != nil {
			h.logger.Error("cash book", slog.Any("error", err))
			shared.RespondError(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
			return
		}
		if asCSV {
			h.writeCSV(w, "cash-book", func(w0 io.Writer) error { return WriteCashBookCSV(w0, book) })
			return
		}
		shared.RespondJSON(w, http.StatusOK, book)
	}
}

func (h *Handler) balanceSheet(asCSV bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bs, err := h.service.BalanceSheet(r.Context())
		if err != nil {
			h.logger.Error("balance sheet", slog.Any("error", err))
			shared.RespondError(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
			return
		}
		if asCSV {
			h.writeCSV(w, "balance-sheet", func(w0 io.Writer) error { return WriteBalanceSheetCSV(w0, bs) })
			return
		}
		shared.RespondJSON(w, http.StatusOK, bs)
	}
}

func (h *Handler) gstSummary(asCSV bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := parseRange(r)
		if err != nil {
			shared.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		rate, err := h.service.ResolveRate(r.URL.Query().Get("rate"))
		if err != nil {
			shared.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		summary, err := h.service.GSTSummary(r.Context(), from, to, rate)
		if err != nil {
			h.logger.Error("gst summary", slog.Any("error", err))
			shared.RespondError(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
			return
		}
		if asCSV {
			h.writeCSV(w, "gst-summary", func(w0 io.Writer) error { return WriteGSTSummaryCSV(w0, summary) })
			return
		}
		shared.RespondJSON(w, http.StatusOK, summary)
	}
}

func (h *Handler) dayBook(asCSV bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := parseRange(r)
		if err != nil {
			shared.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		book, err := h.service.DayBook(r.Context(), from, to)
		if err != nil {
			h.logger.Error("day book", slog.Any("error", err))
			shared.RespondError(w, http.StatusInternalServerError, shared.UserSafeMessage(err))
			return
		}
		if asCSV {
			h.writeCSV(w, "day-book", func(w0 io.Writer) error { return WriteDayBookCSV(w0, book) })
			return
		}
		shared.RespondJSON(w, http.StatusOK, book)
	}
}

func (h *Handler) writeCSV(w http.ResponseWriter, name string, write func(io.Writer) error) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".csv"))
	if err := write(w); err != nil {
		h.logger.Error("csv export", slog.String("report", name), slog.Any("error", err))
	}
}
