package db

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"magicstars/internal/constants"
	"magicstars/internal/models"
)

const pedidoColumns = `id, id_externo, tienda, mensajero, cliente, telefono, direccion, distrito,
       monto_total, estado, metodo_pago, efectivo_2_pagos, sinpe_2_pagos, notas,
       fecha_reparto, fecha_reagenda, comprobante, created_at, updated_at`

func scanPedido(rows *sql.Rows) (models.Pedido, error) {
	var p models.Pedido
	err := rows.Scan(
		&p.ID, &p.IDExterno, &p.Tienda, &p.Mensajero, &p.Cliente, &p.Telefono, &p.Direccion, &p.Distrito,
		&p.MontoTotal, &p.Estado, &p.MetodoPago, &p.Efectivo2P, &p.Sinpe2P, &p.Notas,
		&p.FechaReparto, &p.FechaReagenda, &p.Comprobante, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func queryPedidos(query string, args ...interface{}) ([]models.Pedido, error) {
	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pedidos []models.Pedido
	for rows.Next() {
		p, errScan := scanPedido(rows)
		if errScan != nil {
			log.Printf("queryPedidos: error al escanear pedido: %v", errScan)
			continue
		}
		pedidos = append(pedidos, p)
	}
	return pedidos, rows.Err()
}

// GetPedidosByFecha obtiene todos los pedidos de una fecha de reparto.
// El orden es estable (id ascendente) para que los agregados sean deterministas.
func GetPedidosByFecha(fecha time.Time) ([]models.Pedido, error) {
	query := `SELECT ` + pedidoColumns + `
		FROM pedidos
		WHERE fecha_reparto = $1
		ORDER BY id ASC`
	pedidos, err := queryPedidos(query, fecha.Format(constants.FECHA_FORMATO))
	if err != nil {
		log.Printf("GetPedidosByFecha: error al obtener pedidos del %s: %v", fecha.Format(constants.FECHA_FORMATO), err)
		return nil, err
	}
	return pedidos, nil
}

// GetPedidosByRango obtiene los pedidos de un rango de fechas [desde, hasta]
// agrupados por día, en orden cronológico. Cada elemento del resultado es el
// conjunto de pedidos de un día.
func GetPedidosByRango(desde, hasta time.Time) ([][]models.Pedido, error) {
	if hasta.Before(desde) {
		return nil, fmt.Errorf("rango inválido: hasta (%s) es anterior a desde (%s)",
			hasta.Format(constants.FECHA_FORMATO), desde.Format(constants.FECHA_FORMATO))
	}

	var dias [][]models.Pedido
	for d := desde; !d.After(hasta); d = d.AddDate(0, 0, 1) {
		pedidos, err := GetPedidosByFecha(d)
		if err != nil {
			return nil, err
		}
		dias = append(dias, pedidos)
	}
	return dias, nil
}

// GetPedidosByMensajeroYFecha obtiene los pedidos asignados a un mensajero en
// una fecha. La comparación del nombre ignora mayúsculas y espacios extremos.
func GetPedidosByMensajeroYFecha(mensajero string, fecha time.Time) ([]models.Pedido, error) {
	query := `SELECT ` + pedidoColumns + `
		FROM pedidos
		WHERE UPPER(TRIM(mensajero)) = UPPER(TRIM($1)) AND fecha_reparto = $2
		ORDER BY id ASC`
	pedidos, err := queryPedidos(query, mensajero, fecha.Format(constants.FECHA_FORMATO))
	if err != nil {
		log.Printf("GetPedidosByMensajeroYFecha: error para mensajero '%s' el %s: %v", mensajero, fecha.Format(constants.FECHA_FORMATO), err)
		return nil, err
	}
	return pedidos, nil
}

// GetPedidosSinAsignar obtiene los pedidos de una fecha sin mensajero asignado
// que siguen en un estado repartible (pendiente o reagendado).
func GetPedidosSinAsignar(fecha time.Time) ([]models.Pedido, error) {
	query := `SELECT ` + pedidoColumns + `
		FROM pedidos
		WHERE (mensajero IS NULL OR TRIM(mensajero) = '')
		  AND fecha_reparto = $1
		  AND estado IN ($2, $3)
		ORDER BY id ASC`
	pedidos, err := queryPedidos(query, fecha.Format(constants.FECHA_FORMATO),
		constants.ESTADO_PENDIENTE, constants.ESTADO_REAGENDADO)
	if err != nil {
		log.Printf("GetPedidosSinAsignar: error al obtener pedidos sin asignar del %s: %v", fecha.Format(constants.FECHA_FORMATO), err)
		return nil, err
	}
	return pedidos, nil
}

// GetPedidoByID obtiene un pedido por su ID.
func GetPedidoByID(pedidoID int64) (models.Pedido, error) {
	var p models.Pedido
	query := `SELECT ` + pedidoColumns + ` FROM pedidos WHERE id = $1`
	row := DB.QueryRow(query, pedidoID)
	err := row.Scan(
		&p.ID, &p.IDExterno, &p.Tienda, &p.Mensajero, &p.Cliente, &p.Telefono, &p.Direccion, &p.Distrito,
		&p.MontoTotal, &p.Estado, &p.MetodoPago, &p.Efectivo2P, &p.Sinpe2P, &p.Notas,
		&p.FechaReparto, &p.FechaReagenda, &p.Comprobante, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return p, fmt.Errorf("pedido #%d no encontrado", pedidoID)
		}
		log.Printf("GetPedidoByID: error al obtener el pedido #%d: %v", pedidoID, err)
		return p, err
	}
	return p, nil
}

// UpdatePedidoComprobante guarda el nombre de archivo del comprobante subido.
func UpdatePedidoComprobante(pedidoID int64, filename string) error {
	query := `UPDATE pedidos SET comprobante = $1, updated_at = NOW() WHERE id = $2`
	result, err := DB.Exec(query, filename, pedidoID)
	if err != nil {
		log.Printf("UpdatePedidoComprobante: error al actualizar el pedido #%d: %v", pedidoID, err)
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("pedido #%d no encontrado para actualizar comprobante", pedidoID)
	}
	return nil
}

// GetTiendasByFecha devuelve los nombres de tienda con pedidos en la fecha.
func GetTiendasByFecha(fecha time.Time) ([]string, error) {
	query := `SELECT DISTINCT tienda FROM pedidos WHERE fecha_reparto = $1 ORDER BY tienda`
	rows, err := DB.Query(query, fecha.Format(constants.FECHA_FORMATO))
	if err != nil {
		log.Printf("GetTiendasByFecha: error al obtener tiendas del %s: %v", fecha.Format(constants.FECHA_FORMATO), err)
		return nil, err
	}
	defer rows.Close()

	var tiendas []string
	for rows.Next() {
		var t string
		if errScan := rows.Scan(&t); errScan != nil {
			log.Printf("GetTiendasByFecha: error al escanear tienda: %v", errScan)
			continue
		}
		tiendas = append(tiendas, t)
	}
	return tiendas, rows.Err()
}
