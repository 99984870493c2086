package entity

import "time"

// Employee operario de bodega. Las credenciales las gestiona el servicio de
// autenticación; aquí solo interesa su bodega para el scoping de operaciones.
type Employee struct {
	ID          int64     `json:"id"`
	WarehouseID int64     `json:"warehouse_id"`
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Active      bool      `json:"is_active"`
	UpdatedAt   time.Time `json:"updated_at"`
}
