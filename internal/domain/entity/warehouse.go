package entity

import "time"

// Warehouse bodega física; pertenece a una sucursal (branch) que agrupa las
// órdenes de compra que le corresponden.
type Warehouse struct {
	ID        int64     `json:"id"`
	BranchID  int64     `json:"branch_id"`
	Code      string    `json:"warehouse_code"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Shelf ubicación física (rack) dentro de una bodega.
type Shelf struct {
	ID          int64     `json:"id"`
	WarehouseID int64     `json:"warehouse_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Active      bool      `json:"is_active"`
	UpdatedAt   time.Time `json:"updated_at"`
}
