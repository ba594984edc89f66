//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"spa-storefront/internal/domain/catalog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// SeedCatalogItems inserts services into the catalog table the storefront reads from.
func SeedCatalogItems(t *testing.T, db DBLike, items ...*catalog.Item) {
	t.Helper()

	ctx := context.Background()
	for _, it := range items {
		_, err := db.Exec(ctx,
			`INSERT INTO services (id, name, price, active, category_id) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price,
			   active = EXCLUDED.active, category_id = EXCLUDED.category_id`,
			it.ID, it.Name, it.Price.Int64(), it.Active, it.CategoryID)
		require.NoError(t, err)
	}
}

// PromotionUsedCount reads the counter straight from the table.
func PromotionUsedCount(t *testing.T, db DBLike, code string) int {
	t.Helper()

	var used int
	err := db.QueryRow(context.Background(), "SELECT used_count FROM promotions WHERE code = $1", code).Scan(&used)
	require.NoError(t, err)
	return used
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// ResetDB truncates every application table.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
