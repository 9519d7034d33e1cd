package vouchers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallydesk/tallydesk/internal/tally"
)

// CreateVoucherRequest is the payload for voucher entry from the dashboard.
// Amount is a decimal string to avoid float drift in transit.
type CreateVoucherRequest struct {
	Type      string `json:"type" validate:"required,oneof=receipt payment sales purchase"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Number    string `json:"number" validate:"omitempty,max=64"`
	Party     string `json:"party" validate:"required,max=256"`
	Amount    string `json:"amount" validate:"required"`
	Narration string `json:"narration" validate:"omitempty,max=1024"`
}

// toTallyVoucher converts a validated request into a gateway voucher.
func (req CreateVoucherRequest) toTallyVoucher() (tally.Voucher, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return tally.Voucher{}, err
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return tally.Voucher{}, err
	}
	return tally.Voucher{
		Date:      date,
		Type:      TallyTypeName(req.Type),
		Number:    req.Number,
		Party:     req.Party,
		Amount:    amount,
		Narration: req.Narration,
	}, nil
}
