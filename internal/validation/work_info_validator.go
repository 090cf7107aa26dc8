package validation

import "shiftpay/internal/config"

// WorkInfoValidator validates workplace catalog entries
type WorkInfoValidator struct {
	validator *Validator
}

// NewWorkInfoValidator creates a new work info validator
func NewWorkInfoValidator(cfg *config.Config) *WorkInfoValidator {
	return &WorkInfoValidator{
		validator: NewValidatorWithConfig(cfg),
	}
}

// ValidateWorkplace validates a workplace name
func (wv *WorkInfoValidator) ValidateWorkplace(workplace string) error {
	validationError := NewValidationError()
	wv.checkWorkplace(validationError, workplace)
	return validationError.OrNil()
}

// ValidateWorkInfo validates a workplace together with one of its pay rates
func (wv *WorkInfoValidator) ValidateWorkInfo(workplace string, payRate float64) error {
	validationError := NewValidationError()
	wv.checkWorkplace(validationError, workplace)
	if !wv.validator.IsValidPayRate(payRate) {
		validationError.AddInvalidValueError("payRate", payRate, "must be a non-negative number")
	}
	return validationError.OrNil()
}

func (wv *WorkInfoValidator) checkWorkplace(ve *ValidationError, workplace string) {
	trimmed := wv.validator.TrimAndValidateString(workplace)
	if !wv.validator.IsNonEmptyString(trimmed) {
		ve.AddRequiredError("workplace")
		return
	}
	if !wv.validator.IsValidWorkplaceLength(trimmed) {
		ve.AddInvalidLengthError("workplace", trimmed, wv.validator.getWorkplaceMaxLength())
	}
}
