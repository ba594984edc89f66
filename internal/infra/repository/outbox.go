package repository

import (
	"context"
	"time"

	"spa-storefront/internal/infra"
	"spa-storefront/internal/infra/db"
	"spa-storefront/internal/pkg/pgconv"
	"spa-storefront/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// OutboxRepository appends events inside a transaction and serves the relay
// when bound to the pool.
type OutboxRepository struct {
	db db.DBTX
}

func NewOutboxRepository(dbtx db.DBTX) *OutboxRepository {
	return &OutboxRepository{db: dbtx}
}

func (r *OutboxRepository) Append(ctx context.Context, e shared.OutboxEvent) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO outbox_events (id, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4::jsonb, $5)`,
		e.ID, e.AggregateID, e.EventType, string(e.Payload), pgconv.TimeToPgtype(e.CreatedAt))
	if err != nil {
		return infra.WrapRepoErr("failed to append outbox event", err)
	}
	return nil
}

func (r *OutboxRepository) FetchPending(ctx context.Context, limit int) ([]shared.OutboxEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, aggregate_id, event_type, payload::text, created_at
		FROM outbox_events
		WHERE published_at IS NULL
		ORDER BY created_at, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to fetch pending outbox events", err)
	}
	defer rows.Close()

	var events []shared.OutboxEvent
	for rows.Next() {
		var (
			e         shared.OutboxEvent
			payload   string
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &payload, &createdAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan outbox event", err)
		}
		e.Payload = []byte(payload)
		e.CreatedAt = pgconv.TimeFromPgtype(createdAt)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate outbox events", err)
	}
	return events, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `
		UPDATE outbox_events SET published_at = $2
		WHERE id = ANY($1::uuid[]) AND published_at IS NULL`,
		uuidStrings(ids), pgconv.TimeToPgtype(at))
	if err != nil {
		return infra.WrapRepoErr("failed to mark outbox events published", err)
	}
	return nil
}
