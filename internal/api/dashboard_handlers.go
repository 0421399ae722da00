// Archivo: internal/api/dashboard_handlers.go
//
// Resumen del dashboard: una sola respuesta con las métricas del día. Las
// ramas se consultan en paralelo y la respuesta espera a todas; una rama
// caída deja su sección vacía y una advertencia, no tumba el resumen.
package api

import (
	"log"
	"net/http"
	"sync"

	"magicstars/internal/constants"
	"magicstars/internal/db"
	"magicstars/internal/liquidacion"
	"magicstars/internal/models"
	"magicstars/internal/utils"
)

// ResumenPedidos agrupa los conteos de pedidos del día por estado.
type ResumenPedidos struct {
	Total       int     `json:"total"`
	Entregados  int     `json:"entregados"`
	Pendientes  int     `json:"pendientes"`
	Devueltos   int     `json:"devueltos"`
	Reagendados int     `json:"reagendados"`
	Cancelados  int     `json:"cancelados"`
	SinAsignar  int     `json:"sin_asignar"`
	Recaudado   float64 `json:"recaudado"`

	// Pedidos de la cuenta de pruebas: se cuentan aparte y no suman arriba.
	Pruebas int `json:"pruebas"`
}

// ResumenDashboard es la respuesta de GET /api/admin/resumen.
type ResumenDashboard struct {
	Fecha        string                      `json:"fecha"`
	Pedidos      ResumenPedidos              `json:"pedidos"`
	Mensajeros   int                         `json:"mensajeros"`
	Tiendas      int                         `json:"tiendas"`
	Vencidas     []models.LiquidacionVencida `json:"liquidaciones_vencidas"`
	Advertencias []string                    `json:"advertencias,omitempty"`
}

// GetResumen arma el resumen del día con todas las ramas en paralelo.
func GetResumen(w http.ResponseWriter, r *http.Request) {
	deps := depsDesdeContexto(r)

	fecha, err := utils.ValidateFecha(r.URL.Query().Get("fecha"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	resumen := ResumenDashboard{Fecha: utils.FechaCanonica(fecha)}

	var (
		wg sync.WaitGroup
		mu sync.Mutex // protege resumen.Advertencias
	)
	advertir := func(msg string) {
		mu.Lock()
		resumen.Advertencias = append(resumen.Advertencias, msg)
		mu.Unlock()
	}

	// Rama 1: conteos de pedidos por estado.
	wg.Add(1)
	go func() {
		defer wg.Done()
		pedidos, errPedidos := db.GetPedidosByFecha(fecha)
		if errPedidos != nil {
			advertir("No se pudieron obtener los pedidos del día")
			return
		}
		resumen.Pedidos = contarPedidos(pedidos)
	}()

	// Rama 2: mensajeros activos.
	wg.Add(1)
	go func() {
		defer wg.Done()
		mensajeros, errMensajeros := db.GetMensajeros()
		if errMensajeros != nil {
			advertir("No se pudo obtener la lista de mensajeros")
			return
		}
		resumen.Mensajeros = len(mensajeros)
	}()

	// Rama 3: tiendas con pedidos en la fecha.
	wg.Add(1)
	go func() {
		defer wg.Done()
		tiendas, errTiendas := db.GetTiendasByFecha(fecha)
		if errTiendas != nil {
			advertir("No se pudieron obtener las tiendas del día")
			return
		}
		resumen.Tiendas = len(tiendas)
	}()

	// Rama 4: alerta de liquidaciones vencidas, vía webhook.
	wg.Add(1)
	go func() {
		defer wg.Done()
		vencidas, errVencidas := deps.Webhooks.GetLiquidacionesVencidas(r.Context())
		if errVencidas != nil {
			log.Printf("GetResumen: fallo la consulta de liquidaciones vencidas: %v", errVencidas)
			advertir("No se pudo consultar la alerta de liquidaciones vencidas")
			return
		}
		resumen.Vencidas = vencidas
	}()

	wg.Wait()
	writeJSONSuccess(w, "Resumen del "+resumen.Fecha, resumen)
}

// contarPedidos acumula los conteos por estado. Los pedidos de la cuenta de
// pruebas se separan para no contaminar las métricas de operación.
func contarPedidos(pedidos []models.Pedido) ResumenPedidos {
	var res ResumenPedidos
	for i := range pedidos {
		p := &pedidos[i]

		if p.Mensajero.Valid && liquidacion.NormalizarActor(p.Mensajero.String) == constants.MENSAJERO_PRUEBA {
			res.Pruebas++
			continue
		}

		res.Total++
		switch p.Estado {
		case constants.ESTADO_ENTREGADO:
			res.Entregados++
			res.Recaudado += p.MontoTotal
		case constants.ESTADO_PENDIENTE:
			res.Pendientes++
		case constants.ESTADO_DEVOLUCION:
			res.Devueltos++
		case constants.ESTADO_REAGENDADO:
			res.Reagendados++
		case constants.ESTADO_CANCELADO:
			res.Cancelados++
		}
		if !p.Mensajero.Valid || p.Mensajero.String == "" {
			res.SinAsignar++
		}
	}
	return res
}
