package repository

import (
	"context"

	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
)

// TransferRepository auditoría append-only de movimientos.
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
}
