package repository

import (
	"context"

	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
)

// ProductRepository resolución de productos (colaborador de solo lectura).
type ProductRepository interface {
	// GetByID devuelve nil, nil si el producto no existe.
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
}
