package db

import (
	"log"
	"time"

	"magicstars/internal/constants"
	"magicstars/internal/models"
)

// GetGastosByMensajeroYFecha obtiene los gastos registrados por un mensajero
// en una fecha, en orden estable de inserción.
func GetGastosByMensajeroYFecha(mensajero string, fecha time.Time) ([]models.Gasto, error) {
	query := `SELECT id, mensajero, fecha, monto, descripcion, comprobante, created_at
		FROM gastos
		WHERE UPPER(TRIM(mensajero)) = UPPER(TRIM($1)) AND fecha = $2
		ORDER BY id ASC`
	rows, err := DB.Query(query, mensajero, fecha.Format(constants.FECHA_FORMATO))
	if err != nil {
		log.Printf("GetGastosByMensajeroYFecha: error para '%s' el %s: %v", mensajero, fecha.Format(constants.FECHA_FORMATO), err)
		return nil, err
	}
	defer rows.Close()

	var gastos []models.Gasto
	for rows.Next() {
		var g models.Gasto
		errScan := rows.Scan(&g.ID, &g.Mensajero, &g.Fecha, &g.Monto, &g.Descripcion, &g.Comprobante, &g.CreatedAt)
		if errScan != nil {
			log.Printf("GetGastosByMensajeroYFecha: error al escanear gasto: %v", errScan)
			continue
		}
		gastos = append(gastos, g)
	}
	return gastos, rows.Err()
}

// TotalGastos suma los montos de una lista de gastos.
func TotalGastos(gastos []models.Gasto) float64 {
	total := 0.0
	for _, g := range gastos {
		total += g.Monto
	}
	return total
}

// AddGasto registra un gasto nuevo y devuelve su ID.
func AddGasto(gasto models.Gasto) (int64, error) {
	query := `INSERT INTO gastos (mensajero, fecha, monto, descripcion, comprobante, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id`
	var id int64
	err := DB.QueryRow(query,
		gasto.Mensajero, gasto.Fecha.Format(constants.FECHA_FORMATO),
		gasto.Monto, gasto.Descripcion, gasto.Comprobante,
	).Scan(&id)
	if err != nil {
		log.Printf("AddGasto: error al registrar gasto de '%s': %v", gasto.Mensajero, err)
		return 0, err
	}
	log.Printf("Gasto #%d registrado para '%s': %.0f (%s).", id, gasto.Mensajero, gasto.Monto, gasto.Descripcion)
	return id, nil
}
