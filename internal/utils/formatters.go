// Archivo: internal/utils/formatters.go

package utils

import (
	"fmt"
	"strings"
	"time"

	"magicstars/internal/constants"
)

// FormatColones formatea un monto en colones para despliegue, con separador
// de miles y sin decimales (la operación trabaja en montos enteros).
// Los montos negativos son válidos y se muestran tal cual.
func FormatColones(monto float64) string {
	negativo := monto < 0
	if negativo {
		monto = -monto
	}

	entero := fmt.Sprintf("%.0f", monto)
	var b strings.Builder
	for i, d := range entero {
		if i > 0 && (len(entero)-i)%3 == 0 {
			b.WriteRune(',')
		}
		b.WriteRune(d)
	}

	if negativo {
		return "-₡" + b.String()
	}
	return "₡" + b.String()
}

// FormatFechaDisplay formatea una fecha para despliegue, ej. "10 de enero".
func FormatFechaDisplay(fecha time.Time) string {
	return fmt.Sprintf("%d de %s", fecha.Day(), constants.MesesES[fecha.Month()])
}

// FechaCanonica devuelve la fecha en el formato canónico YYYY-MM-DD.
func FechaCanonica(fecha time.Time) string {
	return fecha.Format(constants.FECHA_FORMATO)
}
