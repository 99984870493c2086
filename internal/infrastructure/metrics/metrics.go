// Package metrics contadores Prometheus del backend de terminal.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BatchesProcessed lotes confirmados.
	BatchesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terminal_batches_processed_total",
		Help: "Lotes de operaciones confirmados",
	})

	// BatchesFailed lotes revertidos completos.
	BatchesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terminal_batches_failed_total",
		Help: "Lotes de operaciones revertidos",
	})

	// OperationsProcessed operaciones ejecutadas por tipo.
	OperationsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "terminal_operations_processed_total",
		Help: "Operaciones ejecutadas, por tipo",
	}, []string{"type"})

	// IdempotentReplays operaciones respondidas desde el registro de idempotencia.
	IdempotentReplays = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terminal_idempotent_replays_total",
		Help: "Operaciones respondidas con resultado cacheado",
	})

	// InsufficientStockRejections rechazos por stock insuficiente.
	InsufficientStockRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terminal_insufficient_stock_total",
		Help: "Operaciones rechazadas por stock insuficiente",
	})

	// SyncDownloads descargas de sincronización servidas.
	SyncDownloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terminal_sync_downloads_total",
		Help: "Descargas de sincronización servidas",
	})
)
