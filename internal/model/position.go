package model

import "github.com/shopspring/decimal"

// Status marks whether a position takes part in evaluation passes.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Position is one tracked instrument.
type Position struct {
	Symbol         string  `json:"symbol" yaml:"symbol"`
	BaselinePrice  float64 `json:"baseline_price" yaml:"baseline_price"`
	Status         Status  `json:"status" yaml:"status"`
	InvestedAmount float64 `json:"invested_amount" yaml:"invested_amount"`
}

// Active reports whether the position is marked active.
func (p Position) Active() bool {
	return p.Status == StatusActive
}

// Evaluable reports whether the position is active and has both a positive
// baseline and a positive invested amount.
func (p Position) Evaluable() bool {
	return p.Active() && p.BaselinePrice > 0 && p.InvestedAmount > 0
}

// ShareCount returns floor(invested / baseline), or 0 when the baseline is not positive.
func (p Position) ShareCount() int64 {
	if p.BaselinePrice <= 0 || p.InvestedAmount <= 0 {
		return 0
	}
	shares := decimal.NewFromFloat(p.InvestedAmount).Div(decimal.NewFromFloat(p.BaselinePrice))
	return shares.Floor().IntPart()
}

// ClonePositions returns a copy of the slice so callers can rebase without
// touching the input.
func ClonePositions(in []Position) []Position {
	if in == nil {
		return nil
	}
	out := make([]Position, len(in))
	copy(out, in)
	return out
}
