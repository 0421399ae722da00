package models

import (
	"database/sql"
	"time"
)

// Pedido representa una entrega individual de un día de reparto.
type Pedido struct {
	ID            int64          `json:"id"`
	IDExterno     string         `json:"id_externo"` // referencia del sistema de la tienda
	Tienda        string         `json:"tienda"`
	Mensajero     sql.NullString `json:"mensajero"` // NULL mientras el pedido no tenga ruta asignada
	Cliente       string         `json:"cliente"`
	Telefono      sql.NullString `json:"telefono,omitempty"`
	Direccion     string         `json:"direccion"`
	Distrito      sql.NullString `json:"distrito,omitempty"`
	MontoTotal    float64        `json:"monto_total"`
	Estado        string         `json:"estado"`
	MetodoPago    string         `json:"metodo_pago"`
	Efectivo2P    sql.NullString `json:"efectivo_2_pagos,omitempty"` // monto efectivo de un 2PAGOS, texto tal cual viene de la tienda
	Sinpe2P       sql.NullString `json:"sinpe_2_pagos,omitempty"`    // monto sinpe de un 2PAGOS
	Notas         sql.NullString `json:"notas,omitempty"`
	FechaReparto  time.Time      `json:"fecha_reparto"`
	FechaReagenda sql.NullTime   `json:"fecha_reagenda,omitempty"`
	Comprobante   sql.NullString `json:"comprobante,omitempty"` // nombre de archivo en media_storage
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Pago2P es un sub-pago de un pedido 2PAGOS tal como lo espera el webhook
// actualizar-pedido.
type Pago2P struct {
	Metodo      string  `json:"metodo"`
	Monto       float64 `json:"monto"`
	Comprobante string  `json:"comprobante,omitempty"` // imagen base64 del recibo
}
