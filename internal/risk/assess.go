package risk

import (
	"fmt"

	"PortfolioGuard/internal/model"

	"github.com/shopspring/decimal"
)

// Limits holds the loss thresholds for one evaluation pass.
type Limits struct {
	PerPosition float64 // max loss per position before its stop trips
	Hard        float64 // aggregate loss that raises the portfolio alert
	Currency    string  // symbol printed in the portfolio alert
}

// Result is the output of one assessment.
type Result struct {
	Alerts    []string
	TotalLoss float64
	Breaches  []model.Breach
	Failed    []string
	// Rebased is the full position list with evaluated baselines moved to
	// the quote's open price. Positions without a usable quote are unchanged.
	Rebased []model.Position
}

// Assess runs the stop-loss rules over positions in order. A position with
// no entry in quotes is treated as a failed fetch. The input is not modified.
// The portfolio alert is raised whenever the total loss reaches limits.Hard,
// so a Hard of zero alerts on every pass. Prices are rounded half-up on the
// decimal value, which can differ in the last digit from float formatting.
func Assess(positions []model.Position, quotes map[string]model.Quote, limits Limits) Result {
	res := Result{
		Alerts:  []string{},
		Rebased: model.ClonePositions(positions),
	}
	perPosition := decimal.NewFromFloat(limits.PerPosition)
	total := decimal.Zero

	for i, p := range positions {
		if !p.Evaluable() {
			continue
		}
		q, ok := quotes[p.Symbol]
		if !ok {
			res.Failed = append(res.Failed, p.Symbol)
			continue
		}

		shares := p.ShareCount()
		res.Rebased[i].BaselinePrice = q.OpenPrice
		if shares == 0 {
			continue
		}

		open := decimal.NewFromFloat(q.OpenPrice)
		current := decimal.NewFromFloat(q.CurrentPrice)
		count := decimal.NewFromInt(shares)
		stop := open.Sub(perPosition.Div(count))

		if !current.LessThan(stop) {
			continue
		}
		loss := open.Sub(current).Mul(count)
		total = total.Add(loss)

		res.Alerts = append(res.Alerts, fmt.Sprintf("STOP LOSS for %s: Current %s < Limit %s",
			p.Symbol, current.StringFixed(4), stop.StringFixed(4)))
		res.Breaches = append(res.Breaches, model.Breach{
			Symbol:       p.Symbol,
			CurrentPrice: q.CurrentPrice,
			StopPrice:    stop.InexactFloat64(),
			OpenPrice:    q.OpenPrice,
			Shares:       shares,
			Loss:         loss.InexactFloat64(),
		})
	}

	res.TotalLoss = total.InexactFloat64()
	if total.GreaterThanOrEqual(decimal.NewFromFloat(limits.Hard)) {
		res.Alerts = append(res.Alerts, fmt.Sprintf("⚠️ Total portfolio loss approx %s%s",
			limits.Currency, total.StringFixed(2)))
	}
	return res
}
