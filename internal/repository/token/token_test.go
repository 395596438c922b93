package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/db/dbtest"
	"storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_Lifecycle(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	userID := dbtest.InsertUser(ctx, t, pool, "ana@example.com")

	repo := NewPostgres(pool)
	now := time.Now()
	require.NoError(t, repo.Create(ctx, Token{Token: "live", UserID: userID, Kind: "access", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, Token{Token: "stale", UserID: userID, Kind: "access", ExpiresAt: now.Add(-time.Hour)}))
	assert.True(t, errors.Is(repo.Create(ctx, Token{Token: "live", UserID: userID, Kind: "access", ExpiresAt: now}), domain.ErrAlreadyExists))

	got, err := repo.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.Get(ctx, "stale")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, repo.Delete(ctx, "live"))
	assert.True(t, errors.Is(repo.Delete(ctx, "live"), domain.ErrNotFound))
}
