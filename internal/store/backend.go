package store

import (
	"context"
	"errors"

	"PortfolioGuard/internal/model"
)

// ErrNotFound is returned by a Backend that holds no persisted positions yet.
var ErrNotFound = errors.New("no persisted positions")

// Backend reads and fully rewrites the persisted position list.
type Backend interface {
	Read(ctx context.Context) ([]model.Position, error)
	Write(ctx context.Context, positions []model.Position) error
	Name() string
	Close() error
}
