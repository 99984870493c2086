package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims incluye los claims estándar JWT más los campos propios del terminal.
// La emisión de sesiones vive en el servicio de autenticación; aquí solo se
// valida el token y se extraen empleado y bodega para el scoping.
type Claims struct {
	jwt.RegisteredClaims
	EmployeeID  int64 `json:"employee_id"`
	WarehouseID int64 `json:"warehouse_id"`
}

// Generate genera un token firmado con employeeID y warehouseID.
// Lo usa el servicio de autenticación externo; en este repo solo los tests.
func Generate(secret string, employeeID, warehouseID int64, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   fmt.Sprintf("%d", employeeID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		EmployeeID:  employeeID,
		WarehouseID: warehouseID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve employeeID y warehouseID.
// Retorna error si el token es inválido, expirado o tiene firma incorrecta.
func Parse(secret, tokenString string) (employeeID, warehouseID int64, err error) {
	if secret == "" {
		return 0, 0, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, 0, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return 0, 0, fmt.Errorf("claims inválidos")
	}
	return claims.EmployeeID, claims.WarehouseID, nil
}
