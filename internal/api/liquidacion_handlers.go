// Archivo: internal/api/liquidacion_handlers.go
//
// Vistas de liquidaciones del dashboard: por fecha, por rango consolidado,
// por tienda, la confirmación contra el ledger y las alertas de liquidaciones
// vencidas. Las liquidaciones nunca se persisten localmente: cada petición
// recalcula todo desde los pedidos y gastos del día.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"magicstars/internal/db"
	"magicstars/internal/liquidacion"
	"magicstars/internal/models"
	"magicstars/internal/reports"
	"magicstars/internal/utils"
)

// ConfirmarLiquidacionBody es el cuerpo del POST de confirmación.
type ConfirmarLiquidacionBody struct {
	Mensajero    string `json:"mensajero"`
	Fecha        string `json:"fecha"`
	Hasta        string `json:"hasta,omitempty"` // fin del rango, opcional
	PlataInicial string `json:"plata_inicial"`   // texto digitado por el admin
}

// armarLiquidacionesDia construye las liquidaciones de mensajeros de un día a
// partir de sus pedidos y los gastos en la base. Los pedidos sin mensajero
// asignado no pertenecen a ninguna liquidación.
func armarLiquidacionesDia(fecha time.Time, pedidos []models.Pedido, plataInicial float64) ([]models.Liquidacion, error) {
	porMensajero := make(map[string][]models.Pedido)
	for i := range pedidos {
		p := pedidos[i]
		if !p.Mensajero.Valid || p.Mensajero.String == "" {
			continue
		}
		actor := liquidacion.NormalizarActor(p.Mensajero.String)
		porMensajero[actor] = append(porMensajero[actor], p)
	}

	liquidaciones := make([]models.Liquidacion, 0, len(porMensajero))
	for actor, pedidosActor := range porMensajero {
		gastos, errGastos := db.GetGastosByMensajeroYFecha(actor, fecha)
		if errGastos != nil {
			return nil, errGastos
		}

		liq := liquidacion.Calcular(pedidosActor, plataInicial, db.TotalGastos(gastos))
		liq.Mensajero = actor
		liq.Fecha = utils.FechaCanonica(fecha)
		liq.Gastos = gastos
		liquidaciones = append(liquidaciones, liq)
	}
	return liquidaciones, nil
}

// armarTiendasDia construye las liquidaciones de tiendas de un día. Las
// tiendas no reciben plata inicial ni registran gastos en este sistema.
func armarTiendasDia(fecha time.Time) ([]models.TiendaLiquidacion, error) {
	pedidos, err := db.GetPedidosByFecha(fecha)
	if err != nil {
		return nil, err
	}

	porTienda := make(map[string][]models.Pedido)
	for i := range pedidos {
		p := pedidos[i]
		tienda := liquidacion.NormalizarActor(p.Tienda)
		if tienda == "" {
			continue
		}
		porTienda[tienda] = append(porTienda[tienda], p)
	}

	liquidaciones := make([]models.TiendaLiquidacion, 0, len(porTienda))
	for tienda, pedidosTienda := range porTienda {
		tl := liquidacion.CalcularTienda(tienda, pedidosTienda, 0, 0)
		tl.Fecha = utils.FechaCanonica(fecha)
		liquidaciones = append(liquidaciones, tl)
	}
	return liquidaciones, nil
}

// armarRangoConsolidado calcula las liquidaciones de cada día del rango y las
// consolida por mensajero. La plata inicial aplica una sola vez por actor (la
// consolidación no la suma entre días).
func armarRangoConsolidado(desde, hasta time.Time, plataInicial float64) ([]models.Liquidacion, error) {
	diasPedidos, err := db.GetPedidosByRango(desde, hasta)
	if err != nil {
		return nil, err
	}

	var dias [][]models.Liquidacion
	for i, pedidosDia := range diasPedidos {
		fecha := desde.AddDate(0, 0, i)
		liquidaciones, errDia := armarLiquidacionesDia(fecha, pedidosDia, plataInicial)
		if errDia != nil {
			return nil, errDia
		}
		dias = append(dias, liquidaciones)
	}

	consolidado := liquidacion.Consolidar(dias)
	resultado := liquidacion.Ordenado(consolidado)
	for i := range resultado {
		resultado[i].Fecha = utils.FechaCanonica(desde)
	}
	return resultado, nil
}

// verificarContraLedger consulta el ledger por cada liquidación en paralelo y
// marca ya_liquidada según la respuesta. La verificación es consultiva: si
// falla, la liquidación queda como no liquidada y la vista abre igual (la
// confirmación tiene su propia protección de duplicados).
func verificarContraLedger(r *http.Request, liquidaciones []models.Liquidacion) {
	deps := depsDesdeContexto(r)

	var wg sync.WaitGroup
	for i := range liquidaciones {
		liq := &liquidaciones[i]
		gen := deps.Reconciler.IniciarCarga(liq.Mensajero, liq.Fecha)

		wg.Add(1)
		go func() {
			defer wg.Done()
			yaLiquidada, err := deps.Reconciler.Verificar(r.Context(), liq.Mensajero, liq.Fecha, gen)
			if err != nil {
				// Consultivo: la vista sigue sin el dato.
				return
			}
			liq.YaLiquidada = liq.YaLiquidada || yaLiquidada
		}()
	}
	wg.Wait()
}

// GetLiquidaciones devuelve las liquidaciones de mensajeros de una fecha o de
// un rango consolidado (?fecha=YYYY-MM-DD&hasta=YYYY-MM-DD&plata_inicial=N).
func GetLiquidaciones(w http.ResponseWriter, r *http.Request) {
	deps := depsDesdeContexto(r)

	desde, hasta, err := utils.ValidateRango(r.URL.Query().Get("fecha"), r.URL.Query().Get("hasta"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	plataInicial, err := utils.ValidatePlataInicial(r.URL.Query().Get("plata_inicial"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if r.URL.Query().Get("plata_inicial") == "" {
		plataInicial = deps.Config.PlataInicialDefecto
	}

	liquidaciones, err := armarRangoConsolidado(desde, hasta, plataInicial)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Error al calcular las liquidaciones")
		return
	}

	verificarContraLedger(r, liquidaciones)
	writeJSONSuccess(w, fmt.Sprintf("%d liquidaciones", len(liquidaciones)), liquidaciones)
}

// GetTiendasLiquidaciones devuelve las liquidaciones de tiendas de una fecha
// o rango consolidado.
func GetTiendasLiquidaciones(w http.ResponseWriter, r *http.Request) {
	desde, hasta, err := utils.ValidateRango(r.URL.Query().Get("fecha"), r.URL.Query().Get("hasta"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	var dias [][]models.TiendaLiquidacion
	for d := desde; !d.After(hasta); d = d.AddDate(0, 0, 1) {
		liquidaciones, errDia := armarTiendasDia(d)
		if errDia != nil {
			writeJSONError(w, http.StatusInternalServerError, "Error al calcular las liquidaciones de tiendas")
			return
		}
		dias = append(dias, liquidaciones)
	}

	resultado := liquidacion.OrdenadoTiendas(liquidacion.ConsolidarTiendas(dias))
	for i := range resultado {
		resultado[i].Fecha = utils.FechaCanonica(desde)
	}
	writeJSONSuccess(w, fmt.Sprintf("%d tiendas", len(resultado)), resultado)
}

// GetMiLiquidacion devuelve la liquidación del mensajero autenticado para una
// fecha, para que revise su día antes de entregar el efectivo.
func GetMiLiquidacion(w http.ResponseWriter, r *http.Request) {
	deps := depsDesdeContexto(r)
	usuario, ok := usuarioDesdeContexto(r)
	if !ok {
		writeJSONError(w, http.StatusForbidden, "Usuario no encontrado en el contexto")
		return
	}
	fecha, err := utils.ValidateFecha(r.URL.Query().Get("fecha"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	pedidos, err := db.GetPedidosByMensajeroYFecha(usuario.Nombre, fecha)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Error al obtener los pedidos")
		return
	}
	gastos, err := db.GetGastosByMensajeroYFecha(usuario.Nombre, fecha)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Error al obtener los gastos")
		return
	}

	liq := liquidacion.Calcular(pedidos, deps.Config.PlataInicialDefecto, db.TotalGastos(gastos))
	liq.Mensajero = liquidacion.NormalizarActor(usuario.Nombre)
	liq.Fecha = utils.FechaCanonica(fecha)
	liq.Gastos = gastos
	writeJSONSuccess(w, "Liquidación calculada", liq)
}

// ConfirmarLiquidacion recalcula la liquidación del mensajero en el servidor
// (los totales del cliente no se confían) y la envía al ledger a través del
// reconciliador. Un duplicado en el ledger cuenta como confirmación exitosa.
func ConfirmarLiquidacion(w http.ResponseWriter, r *http.Request) {
	deps := depsDesdeContexto(r)

	var body ConfirmarLiquidacionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Cuerpo de la petición inválido: "+err.Error())
		return
	}
	if body.Mensajero == "" {
		writeJSONError(w, http.StatusBadRequest, "Falta el mensajero")
		return
	}
	desde, hasta, err := utils.ValidateRango(body.Fecha, body.Hasta)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	plataInicial, err := utils.ValidatePlataInicial(body.PlataInicial)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	actor := liquidacion.NormalizarActor(body.Mensajero)

	var dias [][]models.Liquidacion
	for d := desde; !d.After(hasta); d = d.AddDate(0, 0, 1) {
		pedidos, errDia := db.GetPedidosByMensajeroYFecha(actor, d)
		if errDia != nil {
			writeJSONError(w, http.StatusInternalServerError, "Error al obtener los pedidos")
			return
		}
		gastos, errDia := db.GetGastosByMensajeroYFecha(actor, d)
		if errDia != nil {
			writeJSONError(w, http.StatusInternalServerError, "Error al obtener los gastos")
			return
		}

		liq := liquidacion.Calcular(pedidos, plataInicial, db.TotalGastos(gastos))
		liq.Mensajero = actor
		liq.Fecha = utils.FechaCanonica(desde)
		liq.Gastos = gastos
		dias = append(dias, []models.Liquidacion{liq})
	}

	consolidado := liquidacion.Consolidar(dias)
	liq, existe := consolidado[actor]
	if !existe || len(liq.Pedidos) == 0 {
		writeJSONError(w, http.StatusNotFound,
			fmt.Sprintf("'%s' no tiene pedidos entre %s y %s", actor, utils.FechaCanonica(desde), utils.FechaCanonica(hasta)))
		return
	}

	if err := deps.Reconciler.Confirmar(r.Context(), liq); err != nil {
		log.Printf("ConfirmarLiquidacion: fallo la confirmación de '%s' (%s): %v", actor, liq.Fecha, err)
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}

	deps.Notifier.LiquidacionConfirmada(liq)
	writeJSONSuccess(w, fmt.Sprintf("Liquidación de '%s' confirmada", actor), liq)
}

// GetLiquidacionesVencidas consulta la alerta del webhook y enriquece cada
// entrada con los totales recalculados localmente para esa fecha.
func GetLiquidacionesVencidas(w http.ResponseWriter, r *http.Request) {
	deps := depsDesdeContexto(r)

	vencidas, err := deps.Webhooks.GetLiquidacionesVencidas(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}

	for i := range vencidas {
		v := &vencidas[i]
		fecha, errFecha := utils.ValidateFecha(v.Fecha)
		if errFecha != nil {
			log.Printf("GetLiquidacionesVencidas: fecha ilegible en la alerta de '%s': '%s'", v.Mensajero, v.Fecha)
			continue
		}

		pedidos, errPedidos := db.GetPedidosByMensajeroYFecha(v.Mensajero, fecha)
		if errPedidos != nil {
			continue
		}
		gastos, errGastos := db.GetGastosByMensajeroYFecha(v.Mensajero, fecha)
		if errGastos != nil {
			continue
		}

		liq := liquidacion.Calcular(pedidos, 0, db.TotalGastos(gastos))
		v.MontoFinal = liq.MontoFinal
		v.PagosEfectivo = liq.PagosEfectivo
		v.PedidosTotal = len(pedidos)
	}

	writeJSONSuccess(w, fmt.Sprintf("%d liquidaciones vencidas", len(vencidas)), vencidas)
}

// ExportLiquidacionesExcel descarga el Excel de liquidaciones de mensajeros.
func ExportLiquidacionesExcel(w http.ResponseWriter, r *http.Request) {
	deps := depsDesdeContexto(r)

	desde, hasta, err := utils.ValidateRango(r.URL.Query().Get("fecha"), r.URL.Query().Get("hasta"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	liquidaciones, err := armarRangoConsolidado(desde, hasta, deps.Config.PlataInicialDefecto)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Error al calcular las liquidaciones")
		return
	}

	fecha := utils.FechaCanonica(desde)
	excelBytes, err := reports.GenerarExcelLiquidaciones(fecha, liquidaciones)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Error al generar el reporte")
		return
	}
	servirExcel(w, fmt.Sprintf("liquidaciones_%s.xlsx", fecha), excelBytes)
}

// ExportTiendasExcel descarga el Excel de liquidaciones de tiendas.
func ExportTiendasExcel(w http.ResponseWriter, r *http.Request) {
	desde, hasta, err := utils.ValidateRango(r.URL.Query().Get("fecha"), r.URL.Query().Get("hasta"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	var dias [][]models.TiendaLiquidacion
	for d := desde; !d.After(hasta); d = d.AddDate(0, 0, 1) {
		liquidaciones, errDia := armarTiendasDia(d)
		if errDia != nil {
			writeJSONError(w, http.StatusInternalServerError, "Error al calcular las liquidaciones de tiendas")
			return
		}
		dias = append(dias, liquidaciones)
	}
	resultado := liquidacion.OrdenadoTiendas(liquidacion.ConsolidarTiendas(dias))

	fecha := utils.FechaCanonica(desde)
	excelBytes, err := reports.GenerarExcelTiendas(fecha, resultado)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Error al generar el reporte")
		return
	}
	servirExcel(w, fmt.Sprintf("tiendas_%s.xlsx", fecha), excelBytes)
}

func servirExcel(w http.ResponseWriter, filename string, contenido []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(contenido)
}
