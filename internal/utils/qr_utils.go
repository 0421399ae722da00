package utils

import (
	"fmt"
	"log"

	"github.com/skip2/go-qrcode"
)

// GenerateSeguimientoLink genera el enlace de seguimiento de un pedido.
// baseURL es configuración (la URL pública del dashboard).
func GenerateSeguimientoLink(baseURL string, pedidoID int64) (string, error) {
	if baseURL == "" {
		log.Println("GenerateSeguimientoLink: baseURL no proporcionada.")
		return "", fmt.Errorf("la URL pública del dashboard no está configurada")
	}
	if pedidoID == 0 {
		return "", fmt.Errorf("ID de pedido inválido para el enlace de seguimiento")
	}
	return fmt.Sprintf("%s/pedido/%d", baseURL, pedidoID), nil
}

// GenerateSeguimientoQR genera el QR del enlace de seguimiento de un pedido.
// El mensajero lo escanea desde la etiqueta del paquete para abrir el pedido.
func GenerateSeguimientoQR(baseURL string, pedidoID int64) ([]byte, error) {
	link, err := GenerateSeguimientoLink(baseURL, pedidoID)
	if err != nil {
		log.Printf("GenerateSeguimientoQR: error al generar enlace para el pedido #%d: %v", pedidoID, err)
		return nil, err
	}

	// qrcode.Medium - nivel de corrección de errores, 256 - tamaño en píxeles.
	qrBytes, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		log.Printf("GenerateSeguimientoQR: error al codificar QR para '%s': %v", link, err)
		return nil, err
	}
	return qrBytes, nil
}
