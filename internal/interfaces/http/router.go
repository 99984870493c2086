package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Terminal-wms/internal/application/batch"
	"github.com/jhoicas/Terminal-wms/internal/application/syncdown"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Processor *batch.Processor
	Sync      *syncdown.Service
	JWTSecret string
}

// Router registra las rutas de la API del terminal.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Rutas del terminal (requieren Bearer Token)
	terminal := api.Group("/terminal", AuthMiddleware(deps.JWTSecret))
	handler := NewTerminalHandler(deps.Processor, deps.Sync)
	terminal.Post("/sync/upload", handler.SyncUpload)
	terminal.Post("/sync/download", handler.SyncDownload)
	terminal.Post("/receipts/free-for-putaway", handler.FreeReceiptsForPutaway)
}
