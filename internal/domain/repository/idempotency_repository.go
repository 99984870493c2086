package repository

import (
	"context"

	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
)

// IdempotencyRepository registros de idempotencia por clave.
type IdempotencyRepository interface {
	// Get devuelve nil, nil si la clave nunca se procesó.
	Get(ctx context.Context, key string) (*entity.ProcessedRequest, error)
	Create(ctx context.Context, record *entity.ProcessedRequest) error
}
