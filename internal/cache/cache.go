// Archivo: internal/cache/cache.go
//
// Caché en Redis de los resultados de check-liquidacion. La verificación es
// consultiva, así que un TTL corto es suficiente; un fallo de caché nunca es
// un error, solo una consulta más al webhook.
package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// TTL de una verificación negativa; las positivas duran más porque una
// liquidación registrada no se des-registra.
const (
	ttlSinLiquidar = 2 * time.Minute
	ttlLiquidada   = 12 * time.Hour
)

type Client struct {
	rdb *redis.Client
}

// Initialize conecta con Redis. Devuelve error si la URL no parsea o el ping
// falla; el llamador decide seguir sin caché.
func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("error al parsear REDIS_URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("error al conectar con Redis: %w", err)
	}

	log.Println("Conexión exitosa a Redis.")
	return &Client{rdb: rdb}, nil
}

func claveVerificacion(mensajero, fecha string) string {
	return "verificacion:" + mensajero + ":" + fecha
}

// GetVerificacion devuelve el resultado cacheado de check-liquidacion y si
// hubo acierto. Seguro sobre receptor nil.
func (c *Client) GetVerificacion(ctx context.Context, mensajero, fecha string) (bool, bool) {
	if c == nil {
		return false, false
	}
	val, err := c.rdb.Get(ctx, claveVerificacion(mensajero, fecha)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache.GetVerificacion: error de Redis para '%s' (%s): %v", mensajero, fecha, err)
		}
		return false, false
	}
	return val == "1", true
}

// SetVerificacion guarda el resultado de check-liquidacion.
func (c *Client) SetVerificacion(ctx context.Context, mensajero, fecha string, yaLiquidada bool) {
	if c == nil {
		return
	}
	val := "0"
	ttl := ttlSinLiquidar
	if yaLiquidada {
		val = "1"
		ttl = ttlLiquidada
	}
	if err := c.rdb.Set(ctx, claveVerificacion(mensajero, fecha), val, ttl).Err(); err != nil {
		log.Printf("cache.SetVerificacion: error de Redis para '%s' (%s): %v", mensajero, fecha, err)
	}
}

// Close cierra la conexión con Redis.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
