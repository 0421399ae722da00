// Archivo: internal/liquidacion/aggregator.go
//
// Cálculo de la liquidación diaria de un actor (mensajero o tienda) a partir
// de sus pedidos. Todas las funciones de este archivo son puras: mismos
// pedidos en el mismo orden producen exactamente las mismas sumas.
package liquidacion

import (
	"database/sql"
	"strconv"
	"strings"

	"magicstars/internal/constants"
	"magicstars/internal/models"
)

// NormalizarActor es la única normalización de nombres de actor del sistema.
// Se aplica en todo punto de agrupación para que "Juan " y "JUAN" no generen
// filas separadas.
func NormalizarActor(nombre string) string {
	return strings.ToUpper(strings.TrimSpace(nombre))
}

// parseMonto2P convierte el sub-monto textual de un pedido 2PAGOS a número.
// Un valor ausente o no numérico cuenta como cero, nunca como error: los datos
// vienen de digitación manual en las tiendas y un pedido no puede perderse por
// un monto ilegible.
func parseMonto2P(s sql.NullString) float64 {
	if !s.Valid {
		return 0
	}
	monto, err := strconv.ParseFloat(strings.TrimSpace(s.String), 64)
	if err != nil {
		return 0
	}
	return monto
}

// Calcular produce la liquidación de un actor para un día a partir de sus
// pedidos, la plata inicial entregada y el total de gastos del día.
//
// Solo los pedidos entregados suman dinero; cualquier otro estado queda fuera
// de todas las sumas monetarias para que un pendiente o una devolución no
// infle los ingresos. Los 2PAGOS aportan su sub-monto de efectivo al total de
// efectivo y su sub-monto de sinpe al total de sinpe; nunca aportan a tarjeta.
// No se valida que los sub-montos sumen el monto total del pedido.
func Calcular(pedidos []models.Pedido, plataInicial, totalGastos float64) models.Liquidacion {
	liq := models.Liquidacion{
		PlataInicial: plataInicial,
		TotalGastos:  totalGastos,
		Pedidos:      pedidos,
	}

	for i := range pedidos {
		p := &pedidos[i]
		if p.Estado != constants.ESTADO_ENTREGADO {
			continue
		}
		liq.TotalRecaudado += p.MontoTotal

		switch p.MetodoPago {
		case constants.PAGO_EFECTIVO:
			liq.PagosEfectivo += p.MontoTotal
		case constants.PAGO_SINPE:
			liq.PagosSinpe += p.MontoTotal
		case constants.PAGO_TARJETA:
			liq.PagosTarjeta += p.MontoTotal
		case constants.PAGO_2PAGOS:
			liq.PagosEfectivo += parseMonto2P(p.Efectivo2P)
			liq.PagosSinpe += parseMonto2P(p.Sinpe2P)
		}
	}

	// El monto final es lo que el mensajero devuelve en efectivo físico; el
	// total recaudado se reporta aparte e incluye todos los métodos de pago.
	liq.MontoFinal = plataInicial + liq.PagosEfectivo - totalGastos
	return liq
}

// EsTiendaComoMensajero indica si la tienda liquida con la regla de mensajero
// (efectivo menos gastos). Se decide por substring de marca, sin distinguir
// mayúsculas, porque los nombres de sucursal varían ("All Stars Heredia").
func EsTiendaComoMensajero(tienda string) bool {
	nombre := NormalizarActor(tienda)
	for _, marca := range constants.MarcasLiquidanComoMensajero {
		if strings.Contains(nombre, marca) {
			return true
		}
	}
	return false
}

// MontoFinalTienda aplica la regla de monto final por identidad de tienda:
// las marcas propias liquidan efectivo menos gastos, el resto entrega el total
// recaudado sin deducción porque sus gastos no se rastrean aquí.
func MontoFinalTienda(tienda string, totalRecaudado, pagosEfectivo, totalGastos float64) float64 {
	if EsTiendaComoMensajero(tienda) {
		return pagosEfectivo - totalGastos
	}
	return totalRecaudado
}

// CalcularTienda produce la liquidación de una tienda para un día, con el
// conteo de pedidos por estado que pide el reporte de tiendas.
func CalcularTienda(tienda string, pedidos []models.Pedido, plataInicial, totalGastos float64) models.TiendaLiquidacion {
	tl := models.TiendaLiquidacion{
		Liquidacion: Calcular(pedidos, plataInicial, totalGastos),
		Tienda:      tienda,
	}

	for i := range pedidos {
		switch pedidos[i].Estado {
		case constants.ESTADO_ENTREGADO:
			tl.Entregados++
		case constants.ESTADO_PENDIENTE:
			tl.Pendientes++
		case constants.ESTADO_DEVOLUCION:
			tl.Devueltos++
		case constants.ESTADO_REAGENDADO:
			tl.Reagendados++
		}
	}

	tl.MontoFinal = MontoFinalTienda(tienda, tl.TotalRecaudado, tl.PagosEfectivo, tl.TotalGastos)
	return tl
}
