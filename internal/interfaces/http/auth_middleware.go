package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Terminal-wms/internal/application/dto"
	"github.com/jhoicas/Terminal-wms/pkg/jwt"
)

// Locals keys para EmployeeID y WarehouseID en Fiber.
const (
	LocalEmployeeID  = "employee_id"
	LocalWarehouseID = "warehouse_id"
)

// AuthMiddleware valida el Bearer Token JWT y extrae empleado y bodega a c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "token vacío"})
		}
		employeeID, warehouseID, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "token inválido o expirado"})
		}
		c.Locals(LocalEmployeeID, employeeID)
		c.Locals(LocalWarehouseID, warehouseID)
		return c.Next()
	}
}

// GetEmployeeID devuelve el EmployeeID del contexto (después del middleware de auth).
func GetEmployeeID(c *fiber.Ctx) int64 {
	v, _ := c.Locals(LocalEmployeeID).(int64)
	return v
}

// GetWarehouseID devuelve el WarehouseID del contexto (después del middleware de auth).
func GetWarehouseID(c *fiber.Ctx) int64 {
	v, _ := c.Locals(LocalWarehouseID).(int64)
	return v
}
