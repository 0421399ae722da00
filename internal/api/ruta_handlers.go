// Archivo: internal/api/ruta_handlers.go
//
// Generación y reasignación de rutas. El dashboard solo dispara los flujos de
// n8n y clasifica la respuesta de texto libre; la asignación real de pedidos
// ocurre del otro lado.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"magicstars/internal/liquidacion"
	"magicstars/internal/utils"
)

// GenerarRutasBody es el cuerpo del POST de generación de rutas.
type GenerarRutasBody struct {
	Fecha     string `json:"fecha"`
	Capacidad int    `json:"capacidad,omitempty"` // pedidos por mensajero; 0 usa el valor configurado
}

// ReasignarRutaBody es el cuerpo del POST de reasignación de ruta.
type ReasignarRutaBody struct {
	Fecha             string `json:"fecha"`
	MensajeroAnterior string `json:"mensajero_anterior"`
	MensajeroNuevo    string `json:"mensajero_nuevo"`
}

// GenerarRutasHandler dispara la generación de rutas del día.
func GenerarRutasHandler(w http.ResponseWriter, r *http.Request) {
	deps := depsDesdeContexto(r)

	var body GenerarRutasBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Cuerpo de la petición inválido: "+err.Error())
		return
	}
	fecha, err := utils.ValidateFecha(body.Fecha)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	capacidad := body.Capacidad
	if capacidad <= 0 {
		capacidad = deps.Config.CapacidadRutaDefecto
	}

	fechaStr := utils.FechaCanonica(fecha)
	respuesta, err := deps.Webhooks.GenerarRutas(r.Context(), fechaStr, capacidad)
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}

	deps.Notifier.RutasGeneradas(fechaStr, capacidad)
	writeJSONSuccess(w, "Rutas generadas", respuesta)
}

// ReasignarRutaHandler mueve la ruta de un mensajero a otro.
func ReasignarRutaHandler(w http.ResponseWriter, r *http.Request) {
	deps := depsDesdeContexto(r)

	var body ReasignarRutaBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Cuerpo de la petición inválido: "+err.Error())
		return
	}
	fecha, err := utils.ValidateFecha(body.Fecha)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	anterior := liquidacion.NormalizarActor(body.MensajeroAnterior)
	nuevo := liquidacion.NormalizarActor(body.MensajeroNuevo)
	if anterior == "" || nuevo == "" {
		writeJSONError(w, http.StatusBadRequest, "Faltan los mensajeros de la reasignación")
		return
	}
	if anterior == nuevo {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("'%s' ya tiene asignada esa ruta", nuevo))
		return
	}

	fechaStr := utils.FechaCanonica(fecha)
	respuesta, err := deps.Webhooks.ReasignarRuta(r.Context(), anterior, nuevo, fechaStr)
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}

	deps.Notifier.RutaReasignada(anterior, nuevo, fechaStr)
	writeJSONSuccess(w, "Ruta reasignada", respuesta)
}
