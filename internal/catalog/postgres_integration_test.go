//go:build integration

package catalog

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/EcoPack/internal/scoring"
	"github.com/MikeSquared-Agency/EcoPack/internal/store"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	ctx := context.Background()
	require.NoError(t, store.RunMigrations(ctx, dbURL))
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestPostgresSourceReplaceAndList(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	src := NewPostgresSource(pool, discardLogger())

	n, err := src.ReplaceAll(ctx, []scoring.Material{
		{Name: "Molded Pulp", Category: "fiber", Strength: scoring.Float(3), Recyclability: scoring.Float(85)},
		{Name: "Kraft Paper", Strength: scoring.Float(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	materials, err := src.List(ctx, "food")
	require.NoError(t, err)
	require.Len(t, materials, 2)
	assert.Equal(t, "Kraft Paper", materials[0].Name)
	assert.Nil(t, materials[0].Recyclability)
	assert.Equal(t, "fiber", materials[1].Category)
	assert.Equal(t, 85.0, *materials[1].Recyclability)
}
