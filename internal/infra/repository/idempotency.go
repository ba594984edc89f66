package repository

import (
	"context"

	"spa-storefront/internal/infra"
	"spa-storefront/internal/infra/db"
	"spa-storefront/internal/pkg/pgconv"
	"spa-storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type IdempotencyRepository struct {
	db db.DBTX
}

func NewIdempotencyRepository(dbtx db.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: dbtx}
}

// Save fails with shared.ErrIdempotencyInFlight when a concurrent request
// already stored the same key.
func (r *IdempotencyRepository) Save(ctx context.Context, rec shared.IdempotencyRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO idempotency_keys (key, customer_id, endpoint, request_hash, booking_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.Key, rec.CustomerID, rec.Endpoint, rec.RequestHash, rec.BookingID,
		pgconv.TimeToPgtype(rec.ExpiresAt), pgconv.TimeToPgtype(rec.CreatedAt))
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return infra.WrapDomainErr(shared.ErrIdempotencyInFlight, "idempotency key already used", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to save idempotency key", err)
	}
	return nil
}

func (r *IdempotencyRepository) Delete(ctx context.Context, key, customerID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM idempotency_keys WHERE key = $1 AND customer_id = $2`, key, customerID)
	if err != nil {
		return infra.WrapRepoErr("failed to delete idempotency key", err)
	}
	return nil
}

func (r *IdempotencyRepository) FindByKey(ctx context.Context, key, customerID uuid.UUID) (*shared.IdempotencyRecord, error) {
	rec := shared.IdempotencyRecord{Key: key, CustomerID: customerID}
	var expiresAt, createdAt pgtype.Timestamptz
	err := r.db.QueryRow(ctx, `
		SELECT endpoint, request_hash, booking_id, expires_at, created_at
		FROM idempotency_keys
		WHERE key = $1 AND customer_id = $2`, key, customerID,
	).Scan(&rec.Endpoint, &rec.RequestHash, &rec.BookingID, &expiresAt, &createdAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}
	rec.ExpiresAt = pgconv.TimeFromPgtype(expiresAt)
	rec.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	return &rec, nil
}
