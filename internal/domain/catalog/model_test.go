package catalog

import (
	"testing"

	"github.com/flexprice/ticketing/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInvoicePrice(t *testing.T) {
	svc := &Service{BasePrice: decimal.NewFromInt(100), FinalPrice: decimal.RequireFromString("121.00")}
	assert.True(t, svc.InvoicePrice().Equal(decimal.RequireFromString("121")))

	svc.FinalPrice = decimal.Zero
	assert.True(t, svc.InvoicePrice().Equal(decimal.NewFromInt(100)))
}

func TestServiceValidate(t *testing.T) {
	svc := &Service{
		Name:       "Hosting",
		Frequency:  types.FrequencyMonthly,
		Renovation: types.RenewalFirstDay,
		BasePrice:  decimal.NewFromInt(10),
	}
	assert.NoError(t, svc.Validate())

	svc.Frequency = "weekly"
	assert.Error(t, svc.Validate())
}
