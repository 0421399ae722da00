package models

import (
	"database/sql"
	"time"
)

// Gasto es un gasto registrado por un mensajero durante su día de reparto
// (combustible, parqueo, etc). Se descuenta del efectivo a entregar.
type Gasto struct {
	ID          int64          `json:"id"`
	Mensajero   string         `json:"mensajero"`
	Fecha       time.Time      `json:"fecha"`
	Monto       float64        `json:"monto"`
	Descripcion string         `json:"descripcion"`
	Comprobante sql.NullString `json:"comprobante,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
