// Archivo: internal/liquidacion/consolidator.go
//
// Consolidación de liquidaciones por rango de fechas: pliega los resultados
// de cada día sobre un acumulado por actor.
package liquidacion

import (
	"sort"

	"magicstars/internal/models"
)

// Consolidar combina los resultados por día de un rango en un acumulado por
// mensajero. La clave del mapa es el nombre normalizado (NormalizarActor).
//
// En cada pliegue se suman los totales y se concatenan (nunca se deduplican)
// las listas de pedidos y gastos. El monto final NO se suma entre días: se
// recalcula tras cada pliegue a partir de los acumulados de efectivo y gastos,
// porque sumar montos finales parciales duplicaría la plata inicial.
// La bandera ya_liquidada queda en OR entre los días del rango.
func Consolidar(dias [][]models.Liquidacion) map[string]*models.Liquidacion {
	consolidado := make(map[string]*models.Liquidacion)

	for _, liquidaciones := range dias {
		for i := range liquidaciones {
			dia := liquidaciones[i]
			clave := NormalizarActor(dia.Mensajero)

			acum, existe := consolidado[clave]
			if !existe {
				// Primer día del actor: se siembra el acumulado con sus valores.
				seed := dia
				seed.Mensajero = clave
				consolidado[clave] = &seed
				continue
			}

			acum.TotalRecaudado += dia.TotalRecaudado
			acum.PagosEfectivo += dia.PagosEfectivo
			acum.PagosSinpe += dia.PagosSinpe
			acum.PagosTarjeta += dia.PagosTarjeta
			acum.TotalGastos += dia.TotalGastos
			acum.Pedidos = append(acum.Pedidos, dia.Pedidos...)
			acum.Gastos = append(acum.Gastos, dia.Gastos...)
			acum.YaLiquidada = acum.YaLiquidada || dia.YaLiquidada

			acum.MontoFinal = acum.PlataInicial + acum.PagosEfectivo - acum.TotalGastos
		}
	}

	return consolidado
}

// ConsolidarTiendas combina los resultados por día de un rango en un acumulado
// por tienda. Además de los totales pliega los conteos por estado.
//
// La regla de monto final por identidad de tienda se aplica en una pasada
// posterior, cuando ya están plegados todos los días: depende del efectivo y
// los gastos completamente acumulados, no de los parciales de cada día.
func ConsolidarTiendas(dias [][]models.TiendaLiquidacion) map[string]*models.TiendaLiquidacion {
	consolidado := make(map[string]*models.TiendaLiquidacion)

	for _, liquidaciones := range dias {
		for i := range liquidaciones {
			dia := liquidaciones[i]
			clave := NormalizarActor(dia.Tienda)

			acum, existe := consolidado[clave]
			if !existe {
				seed := dia
				consolidado[clave] = &seed
				continue
			}

			acum.TotalRecaudado += dia.TotalRecaudado
			acum.PagosEfectivo += dia.PagosEfectivo
			acum.PagosSinpe += dia.PagosSinpe
			acum.PagosTarjeta += dia.PagosTarjeta
			acum.TotalGastos += dia.TotalGastos
			acum.Pedidos = append(acum.Pedidos, dia.Pedidos...)
			acum.Gastos = append(acum.Gastos, dia.Gastos...)
			acum.YaLiquidada = acum.YaLiquidada || dia.YaLiquidada

			acum.Entregados += dia.Entregados
			acum.Pendientes += dia.Pendientes
			acum.Devueltos += dia.Devueltos
			acum.Reagendados += dia.Reagendados
		}
	}

	// Pasada final: la regla por tienda sobre los acumulados completos.
	for _, acum := range consolidado {
		acum.MontoFinal = MontoFinalTienda(acum.Tienda, acum.TotalRecaudado, acum.PagosEfectivo, acum.TotalGastos)
	}

	return consolidado
}

// Ordenado devuelve los acumulados de mensajeros como lista ordenada por
// nombre, para respuestas de API deterministas.
func Ordenado(consolidado map[string]*models.Liquidacion) []models.Liquidacion {
	claves := make([]string, 0, len(consolidado))
	for clave := range consolidado {
		claves = append(claves, clave)
	}
	sort.Strings(claves)

	resultado := make([]models.Liquidacion, 0, len(claves))
	for _, clave := range claves {
		resultado = append(resultado, *consolidado[clave])
	}
	return resultado
}

// OrdenadoTiendas es el equivalente de Ordenado para tiendas.
func OrdenadoTiendas(consolidado map[string]*models.TiendaLiquidacion) []models.TiendaLiquidacion {
	claves := make([]string, 0, len(consolidado))
	for clave := range consolidado {
		claves = append(claves, clave)
	}
	sort.Strings(claves)

	resultado := make([]models.TiendaLiquidacion, 0, len(claves))
	for _, clave := range claves {
		resultado = append(resultado, *consolidado[clave])
	}
	return resultado
}
