package model

// Breach describes a position that fell below its stop price.
type Breach struct {
	Symbol       string  `json:"symbol"`
	CurrentPrice float64 `json:"current_price"`
	StopPrice    float64 `json:"stop_price"`
	OpenPrice    float64 `json:"open_price"`
	Shares       int64   `json:"shares"`
	Loss         float64 `json:"loss"`
}

// CheckResult is the outcome of one "check portfolio" pass.
type CheckResult struct {
	RunID     string   `json:"run_id"`
	Alerts    []string `json:"alerts"`
	TotalLoss float64  `json:"total_loss"`
	Breaches  []Breach `json:"breaches,omitempty"`
	Failed    []string `json:"failed,omitempty"`
	Saved     bool     `json:"saved"`
}
