// Archivo: internal/api/middleware.go
package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"magicstars/internal/constants"
	"magicstars/internal/db"
	"magicstars/internal/models"
)

// UserContextKey - clave para guardar el usuario autenticado en el contexto.
var UserContextKey = &contextKey{"Usuario"}

type contextKey struct {
	name string
}

// AuthMiddleware valida el encabezado X-Dashboard-Auth.
// El token tiene la forma "nombre|timestamp|firma", donde la firma es
// HMAC-SHA256(secret, "nombre|timestamp"). Los tokens caducan a las 24 horas.
func AuthMiddleware(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("X-Dashboard-Auth")
			if authHeader == "" {
				http.Error(w, "Unauthorized: Missing X-Dashboard-Auth header", http.StatusUnauthorized)
				return
			}

			nombre, err := validateAuthToken(authHeader, secretKey)
			if err != nil {
				log.Printf("AuthMiddleware: token inválido: %v", err)
				http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
				return
			}

			usuario, err := db.GetUsuarioByNombre(nombre)
			if err != nil {
				log.Printf("AuthMiddleware: usuario '%s' no encontrado: %v", nombre, err)
				http.Error(w, "Unauthorized: User not found", http.StatusUnauthorized)
				return
			}
			if !usuario.Activo {
				http.Error(w, "Unauthorized: User disabled", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, usuario)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RoleMiddleware exige un rol mínimo. Los administradores pasan siempre.
func RoleMiddleware(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			usuario, ok := r.Context().Value(UserContextKey).(models.Usuario)
			if !ok {
				http.Error(w, "Forbidden: User data not found in context", http.StatusForbidden)
				return
			}

			if usuario.Role != requiredRole && usuario.Role != constants.ROLE_ADMIN {
				http.Error(w, "Forbidden: Insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// validateAuthToken verifica la firma y la vigencia de un token del dashboard.
// Devuelve el nombre de usuario contenido en el token.
func validateAuthToken(token, secret string) (string, error) {
	parts := strings.Split(token, "|")
	if len(parts) != 3 {
		return "", fmt.Errorf("el token no tiene tres partes")
	}
	nombre, timestampStr, firma := parts[0], parts[1], parts[2]

	timestamp, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		return "", fmt.Errorf("timestamp ilegible en el token: %w", err)
	}
	edad := time.Since(time.Unix(timestamp, 0))
	if edad < 0 || edad > 24*time.Hour {
		return "", fmt.Errorf("token vencido (emitido hace %v)", edad)
	}

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(nombre + "|" + timestampStr))
	esperada := hex.EncodeToString(h.Sum(nil))

	if !hmac.Equal([]byte(esperada), []byte(firma)) {
		return "", fmt.Errorf("firma del token inválida")
	}
	return nombre, nil
}
