// Package core provides the dataset record types, the summary table types
// and money helpers shared by the loaders, the aggregators and the web layer.
//
// This file contains functions for parsing payment values from the CSV
// datasets and formatting revenue as Brazilian reais.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParsePayment converts a payment_value cell into a decimal amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. When
// both appear, the last one is the decimal separator and the other groups
// thousands. Negative values are rejected: payments in the dataset are
// never negative.
//
// Examples:
//
//	ParsePayment("12.34")    -> 12.34, nil
//	ParsePayment("12,34")    -> 12.34, nil
//	ParsePayment("1.234,56") -> 1234.56, nil
//	ParsePayment("1,234.56") -> 1234.56, nil
//	ParsePayment("-1")       -> 0, ErrInvalidAmount
func ParsePayment(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return decimal.Zero, ErrInvalidAmount
	}
	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

var brlPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL formats an amount the way the revenue metric is shown:
// currency symbol followed by the pt-BR grouped number, e.g. "R$ 1.234,56".
func FormatBRL(d decimal.Decimal) string {
	symbol := fmt.Sprint(currency.Symbol(currency.BRL))
	return symbol + " " + brlPrinter.Sprintf("%.2f", d.Round(2).InexactFloat64())
}
