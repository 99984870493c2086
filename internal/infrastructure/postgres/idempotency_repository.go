package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/Terminal-wms/internal/domain"
	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
	"github.com/jhoicas/Terminal-wms/internal/domain/repository"
)

var _ repository.IdempotencyRepository = (*IdempotencyRepo)(nil)

// IdempotencyRepo registros de idempotencia sobre PostgreSQL (usable con pool o tx).
type IdempotencyRepo struct {
	q Querier
}

// NewIdempotencyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIdempotencyRepository(q Querier) *IdempotencyRepo {
	return &IdempotencyRepo{q: q}
}

// Get devuelve el registro de la clave o nil, nil si nunca se procesó.
func (r *IdempotencyRepo) Get(ctx context.Context, key string) (*entity.ProcessedRequest, error) {
	var rec entity.ProcessedRequest
	err := r.q.QueryRow(ctx, `
		SELECT id, idempotency_key, response_code, response_body, created_at
		FROM processed_requests WHERE idempotency_key = $1`,
		key,
	).Scan(&rec.ID, &rec.IdempotencyKey, &rec.ResponseCode, &rec.ResponseBody, &rec.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get processed request: %w", err)
	}
	return &rec, nil
}

// Create persiste el registro. La clave es única; una inserción duplicada
// (dos lotes compitiendo por la misma clave) se reporta como ErrDuplicate.
func (r *IdempotencyRepo) Create(ctx context.Context, rec *entity.ProcessedRequest) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO processed_requests (id, idempotency_key, response_code, response_body, created_at)
		VALUES ($1, $2, $3, $4, now())`,
		rec.ID, rec.IdempotencyKey, rec.ResponseCode, rec.ResponseBody,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("clave de idempotencia en uso: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("create processed request: %w", err)
	}
	return nil
}
