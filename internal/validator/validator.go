package validator

import (
	"sync"

	ierr "github.com/flexprice/ticketing/internal/errors"
	"github.com/flexprice/ticketing/internal/types"
	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// NewValidator returns the shared validator with the billing tags registered
func NewValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("date_only", validateDateOnly)
		_ = validate.RegisterValidation("frequency", func(fl validator.FieldLevel) bool {
			return types.Frequency(fl.Field().String()).Validate() == nil
		})
		_ = validate.RegisterValidation("renovation", func(fl validator.FieldLevel) bool {
			return types.RenewalDayPolicy(fl.Field().String()).Validate() == nil
		})
		_ = validate.RegisterValidation("payment_type", func(fl validator.FieldLevel) bool {
			return types.PaymentType(fl.Field().String()).Validate() == nil
		})
	})
	return validate
}

func GetValidator() *validator.Validate {
	return NewValidator()
}

// validateDateOnly accepts YYYY-MM-DD strings
func validateDateOnly(fl validator.FieldLevel) bool {
	_, err := types.ParseDate(fl.Field().String(), nil)
	return err == nil
}

func ValidateRequest(req interface{}) error {
	if err := GetValidator().Struct(req); err != nil {
		details := make(map[string]any)
		var validateErrs validator.ValidationErrors
		if ierr.As(err, &validateErrs) {
			for _, err := range validateErrs {
				details[err.Field()] = err.Error()
			}
		}
		return ierr.WithError(err).
			WithHint("Request validation failed").
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}
