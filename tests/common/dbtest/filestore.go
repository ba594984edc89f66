//go:build unit || e2e

package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"spa-storefront/internal/domain/catalog"
	"spa-storefront/internal/domain/promotion"
	"spa-storefront/internal/infra/filestore"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// OpenFileStore opens a throwaway sqlite store and seeds its catalog.
func OpenFileStore(t *testing.T, items ...*catalog.Item) *gorm.DB {
	t.Helper()

	gdb, cleanup, err := filestore.Open(filepath.Join(t.TempDir(), "storefront.db"))
	require.NoError(t, err)
	t.Cleanup(cleanup)

	require.NoError(t, filestore.UpsertCatalogItems(context.Background(), gdb, items...))
	return gdb
}

func SeedFilePromotions(t *testing.T, gdb *gorm.DB, promos ...*promotion.Promotion) {
	t.Helper()

	repo := filestore.NewPromotionRepository(gdb)
	for _, p := range promos {
		require.NoError(t, repo.Create(context.Background(), p))
	}
}

// FilePromotionUsedCount reads the counter back through the repository.
func FilePromotionUsedCount(t *testing.T, gdb *gorm.DB, code string) int {
	t.Helper()

	c, err := promotion.NewCode(code)
	require.NoError(t, err)
	p, err := filestore.NewPromotionRepository(gdb).FindByCode(context.Background(), c)
	require.NoError(t, err)
	return p.UsedCount()
}
