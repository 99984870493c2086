package syncdown

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Terminal-wms/internal/application/dto"
	"github.com/jhoicas/Terminal-wms/internal/domain"
	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
	"github.com/jhoicas/Terminal-wms/internal/domain/repository"
	"github.com/jhoicas/Terminal-wms/internal/infrastructure/metrics"
	"github.com/jhoicas/Terminal-wms/pkg/logger"
)

// Nombres de tabla que el terminal conoce; las claves del mapa de datos y el
// selector de paginación usan estos nombres legados.
const (
	tableProducts     = "urunler"
	tableShelfs       = "shelfs"
	tableEmployees    = "employees"
	tableOrders       = "satin_alma_siparis_fis"
	tableOrderLines   = "satin_alma_siparis_fis_satir"
	tablePutaway      = "wms_putaway_status"
	tableReceipts     = "goods_receipts"
	tableReceiptItems = "goods_receipt_items"
	tableStock        = "inventory_stock"
)

// Service resuelve descargas de sincronización de terminales desconectados.
// Lee fuera de cualquier transacción de escritura: la redundancia que eso
// permite la absorbe el buffer de seguridad y el upsert del cliente.
type Service struct {
	repo         repository.SyncRepository
	receipts     repository.ReceiptRepository
	safetyBuffer time.Duration
	defaultLimit int
	log          *logger.Logger
}

// NewService construye el servicio de sincronización.
func NewService(repo repository.SyncRepository, receipts repository.ReceiptRepository,
	safetyBuffer time.Duration, defaultLimit int, log *logger.Logger) *Service {
	return &Service{
		repo:         repo,
		receipts:     receipts,
		safetyBuffer: safetyBuffer,
		defaultLimit: defaultLimit,
		log:          log.WithComponent("sync"),
	}
}

// parseWatermark acepta el formato clásico del terminal y RFC3339.
func parseWatermark(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("last_sync_timestamp con formato inválido: %w", domain.ErrInvalidInput)
}

// Download entrega el snapshot completo o el delta desde el cursor efectivo
// (watermark menos el buffer de seguridad). Con TableName responde solo esa
// tabla, paginada por clave primaria. El alcance de cada tabla hija se
// calcula sobre todos sus padres de la bodega, no solo los cambiados: así un
// hijo modificado de un padre estable nunca se pierde.
func (s *Service) Download(ctx context.Context, req dto.SyncDownloadRequest) (*dto.SyncDownloadResponse, error) {
	if req.WarehouseID <= 0 {
		return nil, fmt.Errorf("warehouse_id es obligatorio: %w", domain.ErrInvalidInput)
	}
	watermark, err := parseWatermark(req.LastSyncTimestamp)
	if err != nil {
		return nil, err
	}

	var cursor *time.Time
	if watermark != nil {
		c := watermark.Add(-s.safetyBuffer)
		cursor = &c
	}

	branchID, err := s.repo.BranchIDForWarehouse(ctx, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	if branchID == 0 {
		return nil, fmt.Errorf("bodega %d desconocida: %w", req.WarehouseID, domain.ErrNotFound)
	}

	scope, err := s.resolveScope(ctx, req.WarehouseID, branchID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	resp := &dto.SyncDownloadResponse{Success: true, Data: map[string]any{}, Timestamp: now}

	if req.TableName != "" {
		if err := s.fillPaginated(ctx, resp, req, branchID, scope, cursor); err != nil {
			return nil, err
		}
	} else {
		if err := s.fillFull(ctx, resp, req.WarehouseID, branchID, scope, cursor); err != nil {
			return nil, err
		}
	}

	metrics.SyncDownloads.Inc()
	s.log.Info().Int64("warehouse_id", req.WarehouseID).
		Bool("full", watermark == nil).Str("table", req.TableName).
		Msg("descarga de sincronización servida")
	return resp, nil
}

// tableScope conjuntos de ids padre, calculados una vez sin cursor.
type tableScope struct {
	orderIDs   []int64
	lineIDs    []int64
	receiptIDs []int64
	shelfIDs   []int64
}

func (s *Service) resolveScope(ctx context.Context, warehouseID, branchID int64) (*tableScope, error) {
	orderIDs, err := s.repo.OpenOrderIDs(ctx, branchID)
	if err != nil {
		return nil, err
	}
	lineIDs, err := s.repo.OrderLineIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	receiptIDs, err := s.repo.ReceiptIDsForScope(ctx, orderIDs, warehouseID)
	if err != nil {
		return nil, err
	}
	shelfIDs, err := s.repo.ShelfIDs(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	return &tableScope{orderIDs: orderIDs, lineIDs: lineIDs, receiptIDs: receiptIDs, shelfIDs: shelfIDs}, nil
}

func (s *Service) fillFull(ctx context.Context, resp *dto.SyncDownloadResponse,
	warehouseID, branchID int64, scope *tableScope, cursor *time.Time) error {
	f := repository.SyncFilter{Cursor: cursor}

	products, err := s.repo.Products(ctx, f)
	if err != nil {
		return err
	}
	shelfs, err := s.repo.Shelfs(ctx, warehouseID, f)
	if err != nil {
		return err
	}
	employees, err := s.repo.Employees(ctx, warehouseID, f)
	if err != nil {
		return err
	}
	orders, err := s.repo.Orders(ctx, branchID, f)
	if err != nil {
		return err
	}
	lines, err := s.repo.OrderLines(ctx, scope.orderIDs, f)
	if err != nil {
		return err
	}
	putaway, err := s.repo.PutawayStatuses(ctx, scope.lineIDs, f)
	if err != nil {
		return err
	}
	receipts, err := s.repo.Receipts(ctx, scope.orderIDs, warehouseID, f)
	if err != nil {
		return err
	}
	items, err := s.repo.ReceiptItems(ctx, scope.receiptIDs, f)
	if err != nil {
		return err
	}
	lots, err := s.repo.Lots(ctx, scope.shelfIDs, scope.receiptIDs, f)
	if err != nil {
		return err
	}

	resp.Data[tableProducts] = nonNil(products)
	resp.Data[tableShelfs] = nonNil(shelfs)
	resp.Data[tableEmployees] = nonNil(employees)
	resp.Data[tableOrders] = nonNil(orders)
	resp.Data[tableOrderLines] = nonNil(lines)
	resp.Data[tablePutaway] = nonNil(putaway)
	resp.Data[tableReceipts] = nonNil(receipts)
	resp.Data[tableReceiptItems] = nonNil(items)
	resp.Data[tableStock] = nonNil(lots)
	return nil
}

func (s *Service) fillPaginated(ctx context.Context, resp *dto.SyncDownloadResponse,
	req dto.SyncDownloadRequest, branchID int64, scope *tableScope, cursor *time.Time) error {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}
	f := repository.SyncFilter{Cursor: cursor, Limit: limit, Offset: (page - 1) * limit}

	var count int
	switch req.TableName {
	case tableProducts:
		rows, err := s.repo.Products(ctx, f)
		if err != nil {
			return err
		}
		count = len(rows)
		resp.Data[tableProducts] = nonNil(rows)
	case tableShelfs:
		rows, err := s.repo.Shelfs(ctx, req.WarehouseID, f)
		if err != nil {
			return err
		}
		count = len(rows)
		resp.Data[tableShelfs] = nonNil(rows)
	case tableEmployees:
		rows, err := s.repo.Employees(ctx, req.WarehouseID, f)
		if err != nil {
			return err
		}
		count = len(rows)
		resp.Data[tableEmployees] = nonNil(rows)
	case tableOrders:
		rows, err := s.repo.Orders(ctx, branchID, f)
		if err != nil {
			return err
		}
		count = len(rows)
		resp.Data[tableOrders] = nonNil(rows)
	case tableOrderLines:
		rows, err := s.repo.OrderLines(ctx, scope.orderIDs, f)
		if err != nil {
			return err
		}
		count = len(rows)
		resp.Data[tableOrderLines] = nonNil(rows)
	case tablePutaway:
		rows, err := s.repo.PutawayStatuses(ctx, scope.lineIDs, f)
		if err != nil {
			return err
		}
		count = len(rows)
		resp.Data[tablePutaway] = nonNil(rows)
	case tableReceipts:
		rows, err := s.repo.Receipts(ctx, scope.orderIDs, req.WarehouseID, f)
		if err != nil {
			return err
		}
		count = len(rows)
		resp.Data[tableReceipts] = nonNil(rows)
	case tableReceiptItems:
		rows, err := s.repo.ReceiptItems(ctx, scope.receiptIDs, f)
		if err != nil {
			return err
		}
		count = len(rows)
		resp.Data[tableReceiptItems] = nonNil(rows)
	case tableStock:
		rows, err := s.repo.Lots(ctx, scope.shelfIDs, scope.receiptIDs, f)
		if err != nil {
			return err
		}
		count = len(rows)
		resp.Data[tableStock] = nonNil(rows)
	default:
		return fmt.Errorf("tabla desconocida %q: %w", req.TableName, domain.ErrInvalidInput)
	}

	resp.Pagination = &dto.PaginationInfo{Table: req.TableName, Page: page, Limit: limit, Count: count}
	return nil
}

// FreeReceiptsForPutaway recepciones libres con stock pendiente de colocar.
func (s *Service) FreeReceiptsForPutaway(ctx context.Context, warehouseID int64) ([]entity.FreeReceiptSummary, error) {
	if warehouseID <= 0 {
		return nil, fmt.Errorf("warehouse_id es obligatorio: %w", domain.ErrInvalidInput)
	}
	list, err := s.receipts.ListFreeForPutaway(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	return nonNil(list), nil
}

// nonNil el terminal espera arrays, nunca null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
