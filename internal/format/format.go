// Package format renders durations and money for terminal output.
package format

import (
	"strconv"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"shiftpay/internal/domain"
	"shiftpay/internal/errors"
)

// Duration renders d in narrow style, e.g. "8h 5m", "45m" or "0h".
func Duration(d domain.Duration) string {
	switch {
	case d.IsZero():
		return "0h"
	case d.Minutes() == 0:
		return strconv.Itoa(d.Hours()) + "h"
	case d.Hours() == 0:
		return strconv.Itoa(d.Minutes()) + "m"
	}
	return strconv.Itoa(d.Hours()) + "h " + strconv.Itoa(d.Minutes()) + "m"
}

// Money formats amounts in one currency for one locale.
type Money struct {
	unit    currency.Unit
	scale   int
	printer *message.Printer
}

// NewMoney parses an ISO 4217 code and a BCP 47 locale.
func NewMoney(code, locale string) (*Money, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, errors.NewInvalidInputError("currency", code, "not an ISO 4217 currency code")
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, errors.NewInvalidInputError("locale", locale, "not a BCP 47 language tag")
	}
	scale, _ := currency.Standard.Rounding(unit)
	return &Money{unit: unit, scale: scale, printer: message.NewPrinter(tag)}, nil
}

// MustMoney is NewMoney for known-good settings.
func MustMoney(code, locale string) *Money {
	m, err := NewMoney(code, locale)
	if err != nil {
		panic(err)
	}
	return m
}

// Format renders amount as "<ISO code> <localized number>", e.g. "EUR 1,234.50".
func (m *Money) Format(amount float64) string {
	return m.unit.String() + " " + m.printer.Sprint(number.Decimal(amount, number.Scale(m.scale)))
}

// Code returns the ISO 4217 code.
func (m *Money) Code() string {
	return m.unit.String()
}
