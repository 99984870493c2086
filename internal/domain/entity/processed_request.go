package entity

import "time"

// ProcessedRequest registro de idempotencia: una fila por clave, creada en el
// primer intento de procesar la operación (éxito o fallo) e inmutable después.
// Un reintento con la misma clave devuelve ResponseBody sin re-ejecutar nada.
type ProcessedRequest struct {
	ID             string    `json:"id"`
	IdempotencyKey string    `json:"idempotency_key"`
	ResponseCode   int       `json:"response_code"`
	ResponseBody   []byte    `json:"response_body"`
	CreatedAt      time.Time `json:"created_at"`
}
