package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"spa-storefront/internal/domain/catalog"
	"spa-storefront/internal/infra"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // pure-Go driver registered as "sqlite"
)

// Open creates or opens the sqlite file at path and brings its schema up to date.
// The pool is limited to one connection so transactions serialize.
func Open(path string) (*gorm.DB, func(), error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	gdb, err := gorm.Open(
		sqlite.New(sqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access sqlite pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(allModels()...); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to migrate sqlite store: %w", err)
	}

	cleanup := func() {
		_ = sqlDB.Close()
	}
	return gdb, cleanup, nil
}

// UpsertCatalogItems writes services into the local catalog table. The
// catalog is owned elsewhere; this exists for seeding and tests.
func UpsertCatalogItems(ctx context.Context, gdb *gorm.DB, items ...*catalog.Item) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]serviceModel, 0, len(items))
	for _, it := range items {
		rows = append(rows, serviceModel{
			ID:         it.ID.String(),
			Name:       it.Name,
			Price:      it.Price.Int64(),
			Active:     it.Active,
			CategoryID: uuidPtrToString(it.CategoryID),
		})
	}
	err := gdb.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error
	if err != nil {
		return infra.WrapRepoErr("failed to upsert catalog items", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		(err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed"))
}
