package repository

import (
	"context"
	"time"

	"spa-storefront/internal/domain/cart"
	"spa-storefront/internal/domain/money"
	"spa-storefront/internal/infra"
	"spa-storefront/internal/infra/db"
	"spa-storefront/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type CartRepository struct {
	db db.DBTX
}

func NewCartRepository(dbtx db.DBTX) *CartRepository {
	return &CartRepository{db: dbtx}
}

// Lock upserts the header with a no-op update so the row lock is taken even
// when the cart already exists.
func (r *CartRepository) Lock(ctx context.Context, customerID uuid.UUID, now time.Time) error {
	ts := pgconv.TimeToPgtype(now)
	_, err := r.db.Exec(ctx, `
		INSERT INTO carts (customer_id, created_at, updated_at)
		VALUES ($1, $2, $2)
		ON CONFLICT (customer_id) DO UPDATE SET updated_at = carts.updated_at`,
		customerID, ts)
	if err != nil {
		return infra.WrapRepoErr("failed to lock cart", err)
	}
	return nil
}

// Save upserts the cart header and rewrites its lines in order.
func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO carts (customer_id, created_at, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id) DO UPDATE SET updated_at = EXCLUDED.updated_at`,
		c.CustomerID(), pgconv.TimeToPgtype(c.CreatedAt()), pgconv.TimeToPgtype(c.UpdatedAt()))
	if err != nil {
		return infra.WrapRepoErr("failed to upsert cart", err)
	}

	if _, err = r.db.Exec(ctx, `DELETE FROM cart_lines WHERE customer_id = $1`, c.CustomerID()); err != nil {
		return infra.WrapRepoErr("failed to clear cart lines", err)
	}

	for i, l := range c.Lines() {
		_, err = r.db.Exec(ctx, `
			INSERT INTO cart_lines (id, customer_id, item_id, item_name, quantity, unit_price, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			l.ID(), c.CustomerID(), l.ItemID(), l.ItemName(), l.Quantity(), l.UnitPrice().Int64(), i)
		if err != nil {
			return infra.WrapRepoErr("failed to insert cart line", err)
		}
	}
	return nil
}

func (r *CartRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*cart.Cart, error) {
	var createdAt, updatedAt pgtype.Timestamptz
	err := r.db.QueryRow(ctx,
		`SELECT created_at, updated_at FROM carts WHERE customer_id = $1`, customerID,
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("cart not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get cart", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, item_id, item_name, quantity, unit_price
		FROM cart_lines
		WHERE customer_id = $1
		ORDER BY position`, customerID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get cart lines", err)
	}
	defer rows.Close()

	var lines []cart.Line
	for rows.Next() {
		var (
			id, itemID uuid.UUID
			name       string
			quantity   int32
			unitPrice  int64
		)
		if err := rows.Scan(&id, &itemID, &name, &quantity, &unitPrice); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart line", err)
		}
		lines = append(lines, cart.ReconstructLine(id, itemID, name, int(quantity), money.Amount(unitPrice)))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate cart lines", err)
	}

	return cart.Reconstruct(customerID, lines, pgconv.TimeFromPgtype(createdAt), pgconv.TimeFromPgtype(updatedAt)), nil
}
