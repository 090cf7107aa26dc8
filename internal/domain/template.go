package domain

import (
	"strings"

	"shiftpay/internal/validation"
)

// Template is a named shift kept for quickly recording recurring work.
type Template struct {
	Name  string
	Shift *Shift
}

// NewTemplate trims name and rejects blank names or a nil shift.
func NewTemplate(name string, shift *Shift) (*Template, error) {
	ve := validation.NewValidationError()
	name = strings.TrimSpace(name)
	if name == "" {
		ve.AddRequiredError("name")
	}
	if shift == nil {
		ve.AddRequiredError("shift")
	}
	if ve.HasErrors() {
		return nil, ve
	}
	return &Template{Name: name, Shift: shift.Clone()}, nil
}
