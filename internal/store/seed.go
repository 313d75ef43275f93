package store

import "PortfolioGuard/internal/model"

// DefaultSeed is written on first run when no seed is configured.
func DefaultSeed() []model.Position {
	return []model.Position{
		{Symbol: "AAPL", BaselinePrice: 32.9828, Status: model.StatusActive, InvestedAmount: 2500},
		{Symbol: "MSFT", BaselinePrice: 102.922, Status: model.StatusActive, InvestedAmount: 5500},
		{Symbol: "TSLA", BaselinePrice: 56.345, Status: model.StatusActive, InvestedAmount: 2500},
		{Symbol: "NVDA", BaselinePrice: 104.1299, Status: model.StatusActive, InvestedAmount: 6700},
		{Symbol: "PLNT", BaselinePrice: 18.71, Status: model.StatusActive, InvestedAmount: 2500},
		{Symbol: "AMZN", BaselinePrice: 91.66, Status: model.StatusActive, InvestedAmount: 6900},
	}
}
