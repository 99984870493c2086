package dto

import "time"

// SyncDownloadRequest petición de descarga del terminal. Sin
// LastSyncTimestamp se entrega un snapshot completo. Con TableName la
// respuesta se pagina sobre esa única tabla.
type SyncDownloadRequest struct {
	WarehouseID       int64  `json:"warehouse_id"`
	LastSyncTimestamp string `json:"last_sync_timestamp,omitempty"`
	TableName         string `json:"table_name,omitempty"`
	Page              int    `json:"page,omitempty"`
	Limit             int    `json:"limit,omitempty"`
}

// PaginationInfo metadatos del modo paginado.
type PaginationInfo struct {
	Table string `json:"table"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Count int    `json:"count"`
}

// SyncDownloadResponse datos por tabla (claves con los nombres legados que el
// terminal conoce) y la marca de tiempo del servidor para el próximo watermark.
type SyncDownloadResponse struct {
	Success    bool            `json:"success"`
	Data       map[string]any  `json:"data"`
	Timestamp  time.Time       `json:"timestamp"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}
