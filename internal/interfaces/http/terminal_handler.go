package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Terminal-wms/internal/application/batch"
	"github.com/jhoicas/Terminal-wms/internal/application/dto"
	"github.com/jhoicas/Terminal-wms/internal/application/syncdown"
	"github.com/jhoicas/Terminal-wms/internal/domain"
)

// TerminalHandler maneja las peticiones HTTP de los terminales de bodega (protegido).
type TerminalHandler struct {
	processor *batch.Processor
	sync      *syncdown.Service
}

// NewTerminalHandler construye el handler.
func NewTerminalHandler(processor *batch.Processor, sync *syncdown.Service) *TerminalHandler {
	return &TerminalHandler{processor: processor, sync: sync}
}

// SyncUpload godoc
// @Summary      Subir lote de operaciones del terminal
// @Description  Ejecuta el lote completo en una transacción serializable. Si
//
//	cualquier operación falla, el lote entero se revierte y el
//	terminal debe reenviarlo tal cual (las claves de idempotencia
//	hacen el reenvío seguro).
//
// @Tags         terminal
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BatchRequest  true  "operaciones ordenadas con local_id e idempotency_key"
// @Success      200   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.BatchFailureResponse
// @Failure      404   {object}  dto.BatchFailureResponse
// @Failure      409   {object}  dto.BatchFailureResponse
// @Failure      500   {object}  dto.BatchFailureResponse
// @Router       /api/terminal/sync/upload [post]
func (h *TerminalHandler) SyncUpload(c *fiber.Ctx) error {
	var req dto.BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.BatchFailureResponse{
			Error: "cuerpo inválido",
		})
	}

	resp, err := h.processor.Process(c.Context(), req.Operations)
	if err != nil {
		return h.batchError(c, err)
	}
	return c.JSON(resp)
}

// batchError mapea el error del lote al contrato del terminal: siempre
// success false, el detalle y cuántas operaciones iban procesadas.
func (h *TerminalHandler) batchError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "el lote falló y fue revertido"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = fiber.StatusBadRequest
		message = "lote con datos inválidos"
	case errors.Is(err, domain.ErrNotFound):
		status = fiber.StatusNotFound
		message = "recurso referenciado inexistente"
	case errors.Is(err, domain.ErrInsufficientStock):
		status = fiber.StatusConflict
		message = "stock insuficiente"
	case errors.Is(err, domain.ErrConflict):
		status = fiber.StatusConflict
		message = "contención en la base de datos, reenviar el mismo lote"
	}

	processed := 0
	var opErr *domain.OperationError
	if errors.As(err, &opErr) {
		processed = opErr.ProcessedCount
	}
	return c.Status(status).JSON(dto.BatchFailureResponse{
		Error:          message,
		Details:        err.Error(),
		ProcessedCount: processed,
	})
}

// SyncDownload godoc
// @Summary      Descargar delta de sincronización
// @Description  Sin last_sync_timestamp entrega el snapshot completo de la
//
//	bodega. Con table_name pagina esa única tabla. Las filas pueden
//	repetirse entre descargas por el buffer de seguridad: el
//	terminal aplica siempre por upsert sobre la clave natural.
//
// @Tags         terminal
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SyncDownloadRequest  true  "warehouse_id y opcionalmente watermark/tabla/página"
// @Success      200   {object}  dto.SyncDownloadResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/terminal/sync/download [post]
func (h *TerminalHandler) SyncDownload(c *fiber.Ctx) error {
	var req dto.SyncDownloadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "cuerpo inválido"})
	}
	if req.WarehouseID == 0 {
		req.WarehouseID = GetWarehouseID(c)
	}

	resp, err := h.sync.Download(c.Context(), req)
	if err != nil {
		return h.queryError(c, err)
	}
	return c.JSON(resp)
}

// FreeReceiptsForPutaway godoc
// @Summary      Recepciones libres pendientes de colocación
// @Description  Lista las recepciones sin orden con stock aún en el área de
//
//	recepción, para la pantalla de putaway del terminal.
//
// @Tags         terminal
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/terminal/receipts/free-for-putaway [post]
func (h *TerminalHandler) FreeReceiptsForPutaway(c *fiber.Ctx) error {
	warehouseID := GetWarehouseID(c)
	list, err := h.sync.FreeReceiptsForPutaway(c.Context(), warehouseID)
	if err != nil {
		return h.queryError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "receipts": list})
}

func (h *TerminalHandler) queryError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "datos inválidos", Details: err.Error()})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "recurso no encontrado", Details: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "error interno", Details: err.Error()})
}
