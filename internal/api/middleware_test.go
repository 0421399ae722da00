package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"
)

func firmarToken(nombre, secret string, emitido time.Time) string {
	timestamp := fmt.Sprintf("%d", emitido.Unix())
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(nombre + "|" + timestamp))
	return nombre + "|" + timestamp + "|" + hex.EncodeToString(h.Sum(nil))
}

func TestValidateAuthToken(t *testing.T) {
	const secret = "secreto-de-prueba"

	t.Run("token válido", func(t *testing.T) {
		token := firmarToken("ANA", secret, time.Now())
		nombre, err := validateAuthToken(token, secret)
		if err != nil {
			t.Fatalf("token válido rechazado: %v", err)
		}
		if nombre != "ANA" {
			t.Errorf("nombre = %q, quiere ANA", nombre)
		}
	})

	t.Run("firma con otro secreto", func(t *testing.T) {
		token := firmarToken("ANA", "otro-secreto", time.Now())
		if _, err := validateAuthToken(token, secret); err == nil {
			t.Fatal("una firma con otro secreto debe rechazarse")
		}
	})

	t.Run("token vencido", func(t *testing.T) {
		token := firmarToken("ANA", secret, time.Now().Add(-25*time.Hour))
		if _, err := validateAuthToken(token, secret); err == nil {
			t.Fatal("un token de hace más de 24 horas debe rechazarse")
		}
	})

	t.Run("token del futuro", func(t *testing.T) {
		token := firmarToken("ANA", secret, time.Now().Add(2*time.Hour))
		if _, err := validateAuthToken(token, secret); err == nil {
			t.Fatal("un timestamp futuro debe rechazarse")
		}
	})

	t.Run("formato inválido", func(t *testing.T) {
		for _, token := range []string{"", "ANA", "ANA|123", "ANA|no-numero|firma"} {
			if _, err := validateAuthToken(token, secret); err == nil {
				t.Errorf("token malformado %q debe rechazarse", token)
			}
		}
	})

	t.Run("nombre manipulado", func(t *testing.T) {
		token := firmarToken("ANA", secret, time.Now())
		manipulado := "ADMIN" + token[3:]
		if _, err := validateAuthToken(manipulado, secret); err == nil {
			t.Fatal("un token con el nombre cambiado debe rechazarse")
		}
	})
}
