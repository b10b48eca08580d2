package platform

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/gray-logic-tuya/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-tuya/internal/infrastructure/database"
	_ "github.com/nerrad567/gray-logic-tuya/migrations"
)

func setupTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "platform.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup

	require.NoError(t, db.Migrate(ctx))
	return NewSQLiteRepository(db)
}

func testRecord(uniqueID, deviceID string) SelectRecord {
	return SelectRecord{
		UniqueID:       uniqueID,
		DeviceID:       deviceID,
		DeviceCategory: "kg",
		Key:            "relay_status",
		Name:           "Power on behavior",
		EntityCategory: EntityCategoryConfig,
		TranslationKey: "relay_status",
		Options:        []string{"power_off", "power_on", "last"},
		Enabled:        true,
	}
}

func TestSQLiteRepository_UpsertAndGet(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	stored, err := repo.Upsert(ctx, testRecord("tuya.dev1relay_status", "dev1"))
	require.NoError(t, err)
	assert.Equal(t, "dev1", stored.DeviceID)
	assert.Equal(t, []string{"power_off", "power_on", "last"}, stored.Options)
	assert.True(t, stored.Enabled)
	assert.False(t, stored.CreatedAt.IsZero())

	got, err := repo.Get(ctx, "tuya.dev1relay_status")
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestSQLiteRepository_UpsertKeepsEnabledFlag(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	rec := testRecord("tuya.dev1relay_status", "dev1")
	_, err := repo.Upsert(ctx, rec)
	require.NoError(t, err)
	require.NoError(t, repo.SetEnabled(ctx, rec.UniqueID, false))

	rec.Name = "Relay status"
	rec.Options = []string{"0", "1"}
	stored, err := repo.Upsert(ctx, rec)
	require.NoError(t, err)

	assert.False(t, stored.Enabled, "operator choice must survive re-registration")
	assert.Equal(t, "Relay status", stored.Name)
	assert.Equal(t, []string{"0", "1"}, stored.Options)
}

func TestSQLiteRepository_NilOptionsStoredAsEmpty(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	rec := testRecord("tuya.dev1mode", "dev1")
	rec.Options = nil
	stored, err := repo.Upsert(ctx, rec)
	require.NoError(t, err)
	assert.Empty(t, stored.Options)
}

func TestSQLiteRepository_NotFound(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrEntityNotFound)

	err = repo.SetEnabled(ctx, "missing", true)
	assert.ErrorIs(t, err, ErrEntityNotFound)
}

func TestSQLiteRepository_ListAndDeleteByDevice(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	for _, rec := range []SelectRecord{
		testRecord("tuya.dev2relay_status", "dev2"),
		testRecord("tuya.dev1relay_status", "dev1"),
		testRecord("tuya.dev1light_mode", "dev1"),
	} {
		_, err := repo.Upsert(ctx, rec)
		require.NoError(t, err)
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "tuya.dev1light_mode", all[0].UniqueID)
	assert.Equal(t, "tuya.dev2relay_status", all[2].UniqueID)

	n, err := repo.DeleteByDevice(ctx, "dev1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	all, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "dev2", all[0].DeviceID)
}
