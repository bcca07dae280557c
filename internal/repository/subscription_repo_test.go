package repository

import (
	"testing"

	"github.com/quocanhngo/agrosynth/internal/model"
	"github.com/quocanhngo/agrosynth/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionRepository_UpsertIsIdempotent(t *testing.T) {
	repo := NewSubscriptionRepository(testutil.NewSQLiteDB(t))
	ctx := t.Context()

	created, err := repo.Upsert(ctx, &model.Subscription{DeviceID: "device-a", Email: "farmer@example.com"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Upsert(ctx, &model.Subscription{DeviceID: "device-a", Email: "farmer@example.com"})
	require.NoError(t, err)
	assert.False(t, created)

	created, err = repo.Upsert(ctx, &model.Subscription{DeviceID: "device-b", Email: "farmer@example.com"})
	require.NoError(t, err)
	assert.True(t, created)

	emails, err := repo.ListEmails(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"farmer@example.com"}, emails)
}
