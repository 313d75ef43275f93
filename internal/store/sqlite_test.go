package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"PortfolioGuard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T) *SQLite {
	t.Helper()
	db, err := NewSQLite(filepath.Join(t.TempDir(), "guard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLite_ReadBeforeWriteIsNotFound(t *testing.T) {
	db := setupSQLite(t)
	_, err := db.Read(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_RoundTripKeepsOrder(t *testing.T) {
	db := setupSQLite(t)
	ctx := context.Background()

	positions := []model.Position{
		{Symbol: "ZZZ", BaselinePrice: 3.5, Status: model.StatusActive, InvestedAmount: 100},
		{Symbol: "AAA", BaselinePrice: 10, Status: model.StatusInactive, InvestedAmount: 0},
		{Symbol: "MMM", BaselinePrice: 7.25, Status: model.StatusActive, InvestedAmount: 700},
	}
	require.NoError(t, db.Write(ctx, positions))

	got, err := db.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, positions, got)

	// A full rewrite drops rows no longer present.
	require.NoError(t, db.Write(ctx, positions[:1]))
	got, err = db.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, positions[:1], got)
}

func TestSQLite_EmptyListIsNotReseeded(t *testing.T) {
	db := setupSQLite(t)
	ctx := context.Background()
	require.NoError(t, db.Write(ctx, []model.Position{}))

	s := New(db, Options{Seed: testSeed(), Location: time.UTC, Clock: fixedClock(12)})
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLite_StoreSeedsAndSaves(t *testing.T) {
	db := setupSQLite(t)
	ctx := context.Background()
	s := New(db, Options{Seed: testSeed(), Location: time.UTC, Clock: fixedClock(10)})

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testSeed(), got)

	got[0].BaselinePrice = 88
	saved, err := s.Save(ctx, got)
	require.NoError(t, err)
	assert.True(t, saved)

	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 88.0, again[0].BaselinePrice)
	assert.Equal(t, "sqlite", s.Backend())
}
