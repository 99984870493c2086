// Package erp integra el ERP Dia por su API JSON. Todas las llamadas son
// fire-and-forget desde el punto de vista del núcleo: un fallo aquí nunca
// revierte ni bloquea una recepción ya confirmada.
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jhoicas/Terminal-wms/internal/domain/entity"
	"github.com/jhoicas/Terminal-wms/pkg/config"
	"github.com/jhoicas/Terminal-wms/pkg/logger"
)

// DiaClient cliente del ERP Dia. Con Disabled en la configuración todos los
// métodos son no-op.
type DiaClient struct {
	cfg  config.ERPConfig
	http *http.Client
	log  *logger.Logger
}

// NewDiaClient construye el cliente con timeout acotado.
func NewDiaClient(cfg config.ERPConfig, log *logger.Logger) *DiaClient {
	return &DiaClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
		log:  log.WithComponent("erp"),
	}
}

type loginRequest struct {
	Login loginBody `json:"login"`
}

type loginBody struct {
	Username           string      `json:"username"`
	Password           string      `json:"password"`
	DisconnectSameUser string      `json:"disconnect_same_user"`
	Lang               string      `json:"lang"`
	Params             loginParams `json:"params"`
}

type loginParams struct {
	APIKey string `json:"apikey"`
}

type loginResponse struct {
	Msg string `json:"msg"`
}

// sessionID abre sesión y devuelve el token. Dia lo entrega en el campo msg.
func (c *DiaClient) sessionID(ctx context.Context) (string, error) {
	payload := loginRequest{Login: loginBody{
		Username:           c.cfg.Username,
		Password:           c.cfg.Password,
		DisconnectSameUser: "true",
		Lang:               "tr",
		Params:             loginParams{APIKey: c.cfg.APIKey},
	}}
	var resp loginResponse
	if err := c.post(ctx, "/api/v3/sis/json", payload, &resp); err != nil {
		return "", err
	}
	if resp.Msg == "" {
		return "", fmt.Errorf("login sin token de sesión en la respuesta")
	}
	return resp.Msg, nil
}

type receiptCreatedEvent struct {
	Session     string             `json:"session_id"`
	CompanyCode int                `json:"firma_kodu"`
	ReceiptID   int64              `json:"goods_receipt_id"`
	OrderID     *int64             `json:"siparis_id"`
	Delivery    *string            `json:"delivery_note_number"`
	ReceiptDate time.Time          `json:"receipt_date"`
	Items       []receiptItemEvent `json:"items"`
}

type receiptItemEvent struct {
	ProductID int64  `json:"urun_id"`
	Quantity  string `json:"miktar"`
}

// NotifyReceiptCreated empuja al ERP la recepción ya confirmada. Se llama
// después del commit; los errores se registran y se descartan.
func (c *DiaClient) NotifyReceiptCreated(ctx context.Context, receipt *entity.GoodsReceipt, items []entity.GoodsReceiptItem) {
	if c.cfg.Disabled {
		return
	}
	session, err := c.sessionID(ctx)
	if err != nil {
		c.log.Error().Err(err).Int64("receipt_id", receipt.ID).Msg("login al ERP fallido")
		return
	}

	event := receiptCreatedEvent{
		Session:     session,
		CompanyCode: c.cfg.CompanyCode,
		ReceiptID:   receipt.ID,
		OrderID:     receipt.OrderID,
		Delivery:    receipt.DeliveryNote,
		ReceiptDate: receipt.ReceiptDate,
	}
	for _, it := range items {
		event.Items = append(event.Items, receiptItemEvent{
			ProductID: it.ProductID,
			Quantity:  it.Quantity.String(),
		})
	}

	if err := c.post(ctx, "/api/v3/scf/json", event, nil); err != nil {
		c.log.Error().Err(err).Int64("receipt_id", receipt.ID).Msg("push de recepción al ERP fallido")
		return
	}
	c.log.Debug().Int64("receipt_id", receipt.ID).Msg("recepción notificada al ERP")
}

func (c *DiaClient) post(ctx context.Context, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("serializar petición: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("construir petición: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("llamada al ERP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ERP respondió %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decodificar respuesta del ERP: %w", err)
		}
	}
	return nil
}
