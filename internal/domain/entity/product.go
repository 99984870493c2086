package entity

import "time"

// Product producto maestro replicado desde el ERP. El terminal lo usa para
// resolver códigos escaneados; nunca lo modifica.
type Product struct {
	ID        int64     `json:"id"`
	Code      string    `json:"StokKodu"`
	Name      string    `json:"UrunAdi"`
	Barcode   *string   `json:"Barcode1"`
	Active    bool      `json:"aktif"`
	UpdatedAt time.Time `json:"updated_at"`
}
