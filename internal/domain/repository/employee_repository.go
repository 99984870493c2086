package repository

import (
	"context"

	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
)

// EmployeeRepository operarios; se usa para resolver la bodega del empleado.
type EmployeeRepository interface {
	// GetByID devuelve nil, nil si el empleado no existe o está inactivo.
	GetByID(ctx context.Context, id int64) (*entity.Employee, error)
}
