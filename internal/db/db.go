// Archivo: internal/db/db.go
package db

import (
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq" // driver PostgreSQL
)

var DB *sql.DB // Conexión global a la base de datos

// InitDB inicializa la conexión a la base de datos y ejecuta las migraciones.
func InitDB() error {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL no está establecida")
	}

	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return fmt.Errorf("error al parsear DATABASE_URL: %v", err)
	}

	query := parsedURL.Query()
	// Ejemplo: query.Set("sslmode", "require") si el hosting lo exige
	parsedURL.RawQuery = query.Encode()
	finalURL := parsedURL.String()

	DB, err = sql.Open("postgres", finalURL)
	if err != nil {
		return fmt.Errorf("error al conectar con la base de datos: %v", err)
	}

	DB.SetMaxOpenConns(50)
	DB.SetMaxIdleConns(20)
	DB.SetConnMaxLifetime(5 * time.Minute)

	if err := DB.Ping(); err != nil {
		return fmt.Errorf("error al verificar la conexión con la base de datos: %v", err)
	}

	log.Println("Conexión exitosa a la base de datos.")

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("error al iniciar la transacción de creación de tablas: %v", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			log.Printf("Rollback de la transacción por error: %v", err)
			tx.Rollback()
		}
	}()

	createTablesSQL := `
        CREATE TABLE IF NOT EXISTS usuarios (
            id SERIAL PRIMARY KEY,
            nombre VARCHAR(100) UNIQUE NOT NULL,
            role TEXT NOT NULL,
            telefono VARCHAR(20),
            activo BOOLEAN DEFAULT TRUE,
            created_at TIMESTAMP DEFAULT NOW(),
            updated_at TIMESTAMP DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS pedidos (
            id SERIAL PRIMARY KEY,
            id_externo TEXT,
            tienda TEXT NOT NULL,
            mensajero TEXT,
            cliente TEXT,
            telefono TEXT,
            direccion TEXT,
            distrito TEXT,
            monto_total FLOAT DEFAULT 0,
            estado TEXT NOT NULL,
            metodo_pago TEXT,
            efectivo_2_pagos TEXT,
            sinpe_2_pagos TEXT,
            notas TEXT,
            fecha_reparto DATE NOT NULL,
            fecha_reagenda DATE,
            comprobante TEXT,
            created_at TIMESTAMP DEFAULT NOW(),
            updated_at TIMESTAMP DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS gastos (
            id SERIAL PRIMARY KEY,
            mensajero TEXT NOT NULL,
            fecha DATE NOT NULL,
            monto FLOAT NOT NULL,
            descripcion TEXT,
            comprobante TEXT,
            created_at TIMESTAMP DEFAULT NOW()
        );
    `
	_, err = tx.Exec(createTablesSQL)
	if err != nil {
		return fmt.Errorf("error al crear las tablas: %v", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("error al confirmar la transacción de creación de tablas: %v", err)
	}
	log.Println("Creación de tablas (si no existían) completada.")

	err = migrateDBSchema()
	if err != nil {
		return fmt.Errorf("error al ejecutar la migración de esquema: %v", err)
	}

	createIndexesSQL := `
        CREATE INDEX IF NOT EXISTS idx_pedidos_fecha_reparto ON pedidos(fecha_reparto);
        CREATE INDEX IF NOT EXISTS idx_pedidos_mensajero_fecha ON pedidos(mensajero, fecha_reparto);
        CREATE INDEX IF NOT EXISTS idx_pedidos_tienda_fecha ON pedidos(tienda, fecha_reparto);
        CREATE INDEX IF NOT EXISTS idx_pedidos_estado ON pedidos(estado);
        CREATE INDEX IF NOT EXISTS idx_gastos_mensajero_fecha ON gastos(mensajero, fecha);
        CREATE INDEX IF NOT EXISTS idx_usuarios_nombre ON usuarios(nombre);
    `
	indexStatements := strings.Split(strings.TrimSpace(createIndexesSQL), ";")
	for _, stmt := range indexStatements {
		trimmedStmt := strings.TrimSpace(stmt)
		if trimmedStmt == "" {
			continue
		}
		_, errIdx := DB.Exec(trimmedStmt)
		if errIdx != nil {
			log.Printf("Advertencia: error al crear índice ('%s'): %v.", trimmedStmt, errIdx)
		}
	}
	log.Println("Creación de índices (si no existían) completada.")

	log.Println("Inicialización de la base de datos completada con éxito.")
	return nil
}

// migrateDBSchema ejecuta las migraciones de esquema necesarias.
// Debe ser idempotente.
func migrateDBSchema() error {
	migrations := []struct {
		name string
		sql  string
	}{
		{
			name: "pedidos.fecha_reagenda",
			sql:  `ALTER TABLE pedidos ADD COLUMN IF NOT EXISTS fecha_reagenda DATE;`,
		},
		{
			name: "pedidos.comprobante",
			sql:  `ALTER TABLE pedidos ADD COLUMN IF NOT EXISTS comprobante TEXT;`,
		},
		{
			name: "gastos.comprobante",
			sql:  `ALTER TABLE gastos ADD COLUMN IF NOT EXISTS comprobante TEXT;`,
		},
		{
			name: "usuarios.activo",
			sql:  `ALTER TABLE usuarios ADD COLUMN IF NOT EXISTS activo BOOLEAN DEFAULT TRUE;`,
		},
	}

	for _, migration := range migrations {
		_, err := DB.Exec(migration.sql)
		if err != nil {
			if strings.Contains(err.Error(), "already exists") {
				log.Printf("INFO: Migración '%s' omitida (el objeto ya existe). Detalle: %v", migration.name, err)
			} else {
				return fmt.Errorf("error en la migración de esquema ('%s'): %v", migration.name, err)
			}
		} else {
			log.Printf("INFO: Migración ('%s') aplicada o el objeto ya existía.", migration.name)
		}
	}

	log.Println("Migración de esquema de base de datos completada (o no requerida).")
	return nil
}

// CloseDB cierra la conexión con la base de datos.
func CloseDB() {
	if DB != nil {
		DB.Close()
		log.Println("Conexión con la base de datos cerrada.")
	}
}
