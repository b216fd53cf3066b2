// Package oracle exposes the price feed native contracts consult. Quotes are
// fiat prices per whole token; they only gate ratio checks and never feed the
// reserve math, so decimal values are acceptable here.
package oracle

import (
	"github.com/shopspring/decimal"
)

// PriceOracle answers fiat price quotes for token symbols.
type PriceOracle interface {
	// Price returns the quote for one whole token and whether a quote exists.
	Price(symbol string) (decimal.Decimal, bool)
}

// Table is a fixed in-memory price table, used at genesis and in tests.
type Table struct {
	prices map[string]decimal.Decimal
}

func NewTable() *Table {
	return &Table{prices: make(map[string]decimal.Decimal)}
}

// Set installs a quote for symbol.
func (t *Table) Set(symbol string, price decimal.Decimal) {
	t.prices[symbol] = price
}

func (t *Table) Price(symbol string) (decimal.Decimal, bool) {
	p, ok := t.prices[symbol]
	return p, ok
}

// Empty answers no quotes; ratio validation is skipped entirely.
type Empty struct{}

func (Empty) Price(string) (decimal.Decimal, bool) {
	return decimal.Zero, false
}
