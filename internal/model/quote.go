package model

import (
	"fmt"
	"math"
)

// Quote is a point-in-time price snapshot for one symbol.
type Quote struct {
	Symbol       string  `json:"symbol"`
	CurrentPrice float64 `json:"current_price"`
	OpenPrice    float64 `json:"open_price"`
}

// Validate rejects quotes with missing, non-finite or non-positive prices.
func (q Quote) Validate() error {
	if !validPrice(q.CurrentPrice) {
		return fmt.Errorf("quote %s: invalid current price %v", q.Symbol, q.CurrentPrice)
	}
	if !validPrice(q.OpenPrice) {
		return fmt.Errorf("quote %s: invalid open price %v", q.Symbol, q.OpenPrice)
	}
	return nil
}

func validPrice(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
