package catalog

import (
	ierr "github.com/flexprice/ticketing/internal/errors"
	"github.com/flexprice/ticketing/internal/types"
	"github.com/shopspring/decimal"
)

// Service is a billable catalog entry. A subscription bills it every Frequency.
type Service struct {
	ID         string                 `db:"id" json:"id"`
	Name       string                 `db:"name" json:"name"`
	Frequency  types.Frequency        `db:"frequency" json:"frequency"`
	Renovation types.RenewalDayPolicy `db:"renovation" json:"renovation"`
	BasePrice  decimal.Decimal        `db:"base_price" json:"base_price"`
	// FinalPrice is the price after VAT and retention
	FinalPrice decimal.Decimal        `db:"final_price" json:"final_price"`

	types.BaseModel
}

// InvoicePrice is the amount a full period bills: FinalPrice when set, else BasePrice
func (s *Service) InvoicePrice() decimal.Decimal {
	if s.FinalPrice.IsPositive() {
		return s.FinalPrice
	}
	return s.BasePrice
}

func (s *Service) Validate() error {
	if s.Name == "" {
		return ierr.NewError("name is required").
			WithHint("Service name is required").
			Mark(ierr.ErrValidation)
	}
	if err := s.Frequency.Validate(); err != nil {
		return err
	}
	if err := s.Renovation.Validate(); err != nil {
		return err
	}
	if s.BasePrice.IsNegative() || s.FinalPrice.IsNegative() {
		return ierr.NewError("negative price").
			WithHint("Service prices cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}
