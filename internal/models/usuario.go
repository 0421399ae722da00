package models

import (
	"database/sql"
	"time"
)

// Usuario es una cuenta del dashboard: administradores de operaciones o
// mensajeros que consultan su propio día.
type Usuario struct {
	ID        int64          `json:"id"`
	Nombre    string         `json:"nombre"` // coincide con el nombre de mensajero en los pedidos
	Role      string         `json:"role"`
	Telefono  sql.NullString `json:"telefono,omitempty"`
	Activo    bool           `json:"activo"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
