package product

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/db/dbtest"
	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_UpsertListAndGet(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)

	repo := NewPostgres(pool, nil)

	sensor, err := repo.Upsert(ctx, domain.Product{
		Key:           "dht22",
		Name:          "DHT22 Sensor",
		Description:   "Temperature and humidity",
		Price:         decimal.RequireFromString("9.50"),
		Category:      domain.CategorySensors,
		StockQuantity: 4,
		Active:        true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, sensor.ID)

	_, err = repo.Upsert(ctx, domain.Product{
		Key:      "old-board",
		Name:     "Retired Board",
		Price:    decimal.RequireFromString("20"),
		Category: domain.CategoryBoards,
		Active:   false,
	})
	require.NoError(t, err)

	list, total, err := repo.List(ctx, ListFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "dht22", list[0].Key)

	list, _, err = repo.List(ctx, ListFilter{Query: "humid"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, _, err = repo.List(ctx, ListFilter{Category: domain.CategoryBoards})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "old-board", list[0].Key)

	got, err := repo.GetByID(ctx, sensor.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("9.50")))
	assert.Equal(t, 4, got.StockQuantity)

	updated, err := repo.Upsert(ctx, domain.Product{
		Key:           "dht22",
		Name:          "DHT22 Sensor v2",
		Price:         decimal.RequireFromString("11.00"),
		Category:      domain.CategorySensors,
		StockQuantity: 7,
		Active:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, sensor.ID, updated.ID)
	assert.Equal(t, 7, updated.StockQuantity)
}

func TestPostgres_GetByIDMalformed(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)

	repo := NewPostgres(pool, nil)
	_, err := repo.GetByID(ctx, "not-a-uuid")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
