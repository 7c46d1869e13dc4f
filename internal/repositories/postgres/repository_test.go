package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/config"
	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
	"github.com/SAP-F-2025/backoffice-service/pkg"
)

func newTestRepository(t *testing.T) (repositories.Repository, *gorm.DB) {
	t.Helper()
	db, err := pkg.InitDatabase(&config.Config{
		DatabaseDriver: "sqlite",
		DatabaseURL:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		Environment:    "test",
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewRepository(db), db
}

func TestGetOrCreateAward_ExistingPairKeepsTransactionUsable(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()

	badge := &models.Badge{Name: "Assidue", RuleType: models.BadgeCourseCompleted, IsActive: true}
	require.NoError(t, db.Create(badge).Error)

	err := repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		first, created, err := repo.Badge().GetOrCreateAward(ctx, tx, &models.BadgeAward{BadgeID: badge.ID, UserID: 7})
		require.NoError(t, err)
		assert.True(t, created)

		again, created, err := repo.Badge().GetOrCreateAward(ctx, tx, &models.BadgeAward{BadgeID: badge.ID, UserID: 7, Notes: "second"})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, again.ID)
		assert.Empty(t, again.Notes)

		awards, err := repo.Badge().ListAwardsByUser(ctx, tx, 7)
		require.NoError(t, err)
		assert.Len(t, awards, 1)
		return nil
	})
	require.NoError(t, err)
}
