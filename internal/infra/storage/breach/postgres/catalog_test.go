package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/breachcheck/internal/domain/breach"
	"github.com/ahrav/breachcheck/internal/infra/storage"
)

func TestCatalogStore_UpsertAndGet(t *testing.T) {
	t.Parallel()

	pool, cleanup := storage.SetupTestContainer(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCatalogStore(pool, storage.NoOpTracer())

	_, err := store.Get(ctx, "Adobe")
	assert.ErrorIs(t, err, breach.ErrNotFound)

	fetched := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	adobe := breach.CatalogEntry{
		Breach: breach.Breach{
			Name:         "Adobe",
			Title:        "Adobe",
			Domain:       "adobe.com",
			BreachDate:   "2013-10-04",
			AddedDate:    "2013-12-04T00:00:00Z",
			ModifiedDate: "2022-05-15T23:52:49Z",
			PwnCount:     152445165,
			Description:  "In October 2013, 153 million Adobe accounts were breached.",
			LogoPath:     "https://haveibeenpwned.com/Content/Images/PwnedLogos/Adobe.png",
			DataClasses:  []string{"Email addresses", "Password hints", "Passwords", "Usernames"},
			IsVerified:   true,
		},
		FetchedAt: fetched,
	}
	ghost := breach.CatalogEntry{
		Breach:    breach.Breach{Name: "Ghost", IsSpamList: true},
		FetchedAt: fetched,
	}

	require.NoError(t, store.Upsert(ctx, adobe, ghost))

	got, err := store.Get(ctx, "Adobe")
	require.NoError(t, err)
	assert.Equal(t, adobe.Breach, got.Breach)
	assert.True(t, adobe.FetchedAt.Equal(got.FetchedAt))

	got, err = store.Get(ctx, "Ghost")
	require.NoError(t, err)
	assert.True(t, got.Breach.IsSpamList)
	assert.Empty(t, got.Breach.DataClasses)

	adobe.Breach.PwnCount = 152445166
	adobe.FetchedAt = fetched.Add(time.Hour)
	require.NoError(t, store.Upsert(ctx, adobe))

	got, err = store.Get(ctx, "Adobe")
	require.NoError(t, err)
	assert.Equal(t, int64(152445166), got.Breach.PwnCount)
	assert.True(t, adobe.FetchedAt.Equal(got.FetchedAt))
}
