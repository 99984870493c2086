package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
	"github.com/jhoicas/Terminal-wms/internal/domain/repository"
)

var _ repository.EmployeeRepository = (*EmployeeRepo)(nil)

// EmployeeRepo operarios sobre PostgreSQL (usable con pool o tx).
type EmployeeRepo struct {
	q Querier
}

// NewEmployeeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEmployeeRepository(q Querier) *EmployeeRepo {
	return &EmployeeRepo{q: q}
}

// GetByID devuelve nil, nil si el empleado no existe o está inactivo.
func (r *EmployeeRepo) GetByID(ctx context.Context, id int64) (*entity.Employee, error) {
	var e entity.Employee
	err := r.q.QueryRow(ctx, `
		SELECT id, warehouse_id, username, first_name, last_name, is_active, updated_at
		FROM employees WHERE id = $1 AND is_active`,
		id,
	).Scan(&e.ID, &e.WarehouseID, &e.Username, &e.FirstName, &e.LastName, &e.Active, &e.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return &e, nil
}
