// Archivo: internal/webhooks/classifier.go
//
// Clasificación de respuestas de los webhooks. El contrato de los flujos de
// n8n es frágil: errores como JSON con campos variables y éxitos de rutas
// como texto libre. Todo el matching de strings vive aquí para poder probarlo
// en un solo lugar.
package webhooks

import (
	"encoding/json"
	"fmt"
	"strings"

	"magicstars/internal/constants"
)

// errorBody cubre las dos formas en que los flujos de n8n reportan errores.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// extraerMensajeError saca el texto de error más útil de un cuerpo de
// respuesta: message, error o el cuerpo crudo si no es JSON.
func extraerMensajeError(body []byte) string {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	texto := strings.TrimSpace(string(body))
	if texto == "" {
		return "sin detalle"
	}
	return texto
}

// clasificarErrorLedger traduce una respuesta no-2xx del ledger. El único
// error que cambia de clase es la violación de unicidad mensajero+fecha, que
// se convierte en ErrYaLiquidada: significa que otro proceso ya liquidó ese
// día y el estado local debe converger a liquidada.
func clasificarErrorLedger(status int, body []byte) error {
	mensaje := extraerMensajeError(body)
	if strings.Contains(mensaje, constants.DUPLICATE_KEY_MARKER) ||
		strings.Contains(string(body), constants.DUPLICATE_KEY_MARKER) {
		return ErrYaLiquidada
	}
	return fmt.Errorf("el ledger respondió estado %d: %s", status, mensaje)
}

// EsRespuestaExitosaRuta decide si la respuesta de texto libre de un webhook
// de rutas reporta éxito, por substring sin distinguir mayúsculas.
func EsRespuestaExitosaRuta(respuesta string) bool {
	texto := strings.ToLower(respuesta)
	for _, frase := range constants.FrasesExitoRutas {
		if strings.Contains(texto, strings.ToLower(frase)) {
			return true
		}
	}
	return false
}
