// internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config guarda todos los parámetros de configuración de la aplicación.
type Config struct {
	DatabaseURL    string
	RedisURL       string
	AppEnv         string
	Port           string
	AuthSecret     string
	WebhookBaseURL string // base de los webhooks de n8n en Railway
	PublicBaseURL  string // URL pública del dashboard, para enlaces de seguimiento

	TelegramToken        string
	ContabilidadChatID   int64
	PlataInicialDefecto  float64
	CapacidadRutaDefecto int
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		AppEnv:         os.Getenv("ENV"),
		Port:           os.Getenv("PORT"),
		AuthSecret:     os.Getenv("AUTH_SECRET"),
		WebhookBaseURL: strings.TrimRight(os.Getenv("WEBHOOK_BASE_URL"), "/"),
		PublicBaseURL:  strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		TelegramToken:  os.Getenv("TELEGRAM_APITOKEN"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	var err error
	cfg.ContabilidadChatID, err = strconv.ParseInt(os.Getenv("CONTABILIDAD_CHAT_ID"), 10, 64)
	if err != nil {
		log.Printf("Advertencia: no se pudo leer CONTABILIDAD_CHAT_ID: %v. Establecido en 0, sin notificaciones a contabilidad.", err)
		cfg.ContabilidadChatID = 0
	}

	plataStr := os.Getenv("PLATA_INICIAL_DEFECTO")
	if plataStr == "" {
		cfg.PlataInicialDefecto = 0
	} else {
		plata, errParse := strconv.ParseFloat(plataStr, 64)
		if errParse != nil || plata < 0 {
			log.Printf("Advertencia: valor inválido para PLATA_INICIAL_DEFECTO ('%s'): %v. Se usa 0.", plataStr, errParse)
			cfg.PlataInicialDefecto = 0
		} else {
			cfg.PlataInicialDefecto = plata
		}
	}

	capacidadStr := os.Getenv("CAPACIDAD_RUTA_DEFECTO")
	if capacidadStr == "" {
		cfg.CapacidadRutaDefecto = 25
	} else {
		capacidad, errParse := strconv.Atoi(capacidadStr)
		if errParse != nil || capacidad <= 0 {
			log.Printf("Advertencia: valor inválido para CAPACIDAD_RUTA_DEFECTO ('%s'): %v. Se usa 25.", capacidadStr, errParse)
			cfg.CapacidadRutaDefecto = 25
		} else {
			cfg.CapacidadRutaDefecto = capacidad
		}
	}

	if cfg.DatabaseURL == "" {
		log.Println("Error crítico: DATABASE_URL no está establecida.")
	}
	if cfg.AuthSecret == "" {
		log.Println("Error crítico: AUTH_SECRET no está establecida. La autenticación del dashboard no funcionará.")
	}
	if cfg.WebhookBaseURL == "" {
		log.Println("Error crítico: WEBHOOK_BASE_URL no está establecida. Las llamadas al ledger y a rutas fallarán.")
	}
	if cfg.RedisURL == "" {
		log.Println("Advertencia: REDIS_URL no está establecida. El caché de verificación de liquidaciones queda deshabilitado.")
	}
	if cfg.TelegramToken == "" {
		log.Println("Advertencia: TELEGRAM_APITOKEN no está establecido. Sin notificaciones de Telegram.")
	}

	log.Println("Configuración cargada.")
	return cfg, nil
}
