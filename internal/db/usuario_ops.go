package db

import (
	"database/sql"
	"fmt"
	"log"

	"magicstars/internal/constants"
	"magicstars/internal/models"
)

// GetUsuarioByNombre obtiene un usuario del dashboard por nombre.
// La comparación ignora mayúsculas y espacios extremos, igual que la
// agrupación de liquidaciones.
func GetUsuarioByNombre(nombre string) (models.Usuario, error) {
	var u models.Usuario
	query := `SELECT id, nombre, role, telefono, activo, created_at, updated_at
		FROM usuarios
		WHERE UPPER(TRIM(nombre)) = UPPER(TRIM($1))`
	err := DB.QueryRow(query, nombre).Scan(
		&u.ID, &u.Nombre, &u.Role, &u.Telefono, &u.Activo, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return u, fmt.Errorf("usuario '%s' no encontrado", nombre)
		}
		log.Printf("GetUsuarioByNombre: error al obtener usuario '%s': %v", nombre, err)
		return u, err
	}
	return u, nil
}

// GetMensajeros devuelve la lista de mensajeros activos, ordenada por nombre.
func GetMensajeros() ([]models.Usuario, error) {
	query := `SELECT id, nombre, role, telefono, activo, created_at, updated_at
		FROM usuarios
		WHERE role = $1 AND activo = TRUE
		ORDER BY nombre ASC`
	rows, err := DB.Query(query, constants.ROLE_MENSAJERO)
	if err != nil {
		log.Printf("GetMensajeros: error al obtener mensajeros: %v", err)
		return nil, err
	}
	defer rows.Close()

	var mensajeros []models.Usuario
	for rows.Next() {
		var u models.Usuario
		errScan := rows.Scan(&u.ID, &u.Nombre, &u.Role, &u.Telefono, &u.Activo, &u.CreatedAt, &u.UpdatedAt)
		if errScan != nil {
			log.Printf("GetMensajeros: error al escanear usuario: %v", errScan)
			continue
		}
		mensajeros = append(mensajeros, u)
	}
	return mensajeros, rows.Err()
}
