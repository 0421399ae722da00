package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"magicstars/internal/constants"
)

// ValidateFecha valida y parsea una fecha de querystring o payload.
// Acepta el formato canónico YYYY-MM-DD y, por tolerancia con planillas
// viejas, DD/MM/YYYY. Devuelve time.Time truncado a día.
func ValidateFecha(fechaStr string) (time.Time, error) {
	fechaStr = strings.TrimSpace(fechaStr)
	if fechaStr == "" {
		return time.Time{}, fmt.Errorf("la fecha está vacía")
	}

	formatos := []string{
		constants.FECHA_FORMATO, // YYYY-MM-DD, formato canónico
		"02/01/2006",            // DD/MM/YYYY, planillas antiguas
	}
	for _, formato := range formatos {
		if parsed, err := time.ParseInLocation(formato, fechaStr, time.Local); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("formato de fecha inválido: '%s'. Use YYYY-MM-DD", fechaStr)
}

// ValidateRango valida un rango [desde, hasta]. Si hasta viene vacío, el
// rango es de un solo día.
func ValidateRango(desdeStr, hastaStr string) (time.Time, time.Time, error) {
	desde, err := ValidateFecha(desdeStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if strings.TrimSpace(hastaStr) == "" {
		return desde, desde, nil
	}
	hasta, err := ValidateFecha(hastaStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if hasta.Before(desde) {
		return time.Time{}, time.Time{}, fmt.Errorf("el rango es inválido: '%s' es anterior a '%s'", hastaStr, desdeStr)
	}
	return desde, hasta, nil
}

// ValidatePlataInicial valida la plata inicial digitada por el administrador.
// Debe ser un número no negativo; se rechaza antes de cualquier llamada de red.
func ValidatePlataInicial(montoStr string) (float64, error) {
	montoStr = strings.TrimSpace(montoStr)
	if montoStr == "" {
		return 0, nil
	}
	monto, err := strconv.ParseFloat(montoStr, 64)
	if err != nil {
		return 0, fmt.Errorf("la plata inicial debe ser un número: '%s'", montoStr)
	}
	if monto < 0 {
		return 0, fmt.Errorf("la plata inicial no puede ser negativa: %.2f", monto)
	}
	return monto, nil
}

// ValidateMontoGasto valida el monto de un gasto nuevo.
func ValidateMontoGasto(monto float64) error {
	if monto <= 0 {
		return fmt.Errorf("el monto del gasto debe ser mayor que cero")
	}
	return nil
}

// ValidateEstadoPedido verifica que el estado destino sea uno conocido.
func ValidateEstadoPedido(estado string) error {
	switch estado {
	case constants.ESTADO_ENTREGADO, constants.ESTADO_PENDIENTE, constants.ESTADO_DEVOLUCION,
		constants.ESTADO_REAGENDADO, constants.ESTADO_CANCELADO:
		return nil
	}
	return fmt.Errorf("estado de pedido desconocido: '%s'", estado)
}

// ValidateMetodoPago verifica que el método de pago sea uno conocido.
func ValidateMetodoPago(metodo string) error {
	switch metodo {
	case constants.PAGO_EFECTIVO, constants.PAGO_SINPE, constants.PAGO_TARJETA,
		constants.PAGO_2PAGOS, constants.PAGO_SIN_PAGO:
		return nil
	}
	return fmt.Errorf("método de pago desconocido: '%s'", metodo)
}
