// Archivo: internal/api/handlers.go
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"magicstars/internal/constants"
	"magicstars/internal/db"
	"magicstars/internal/liquidacion"
	"magicstars/internal/models"
	"magicstars/internal/utils"
	"magicstars/internal/webhooks"
)

// --- Ruta absoluta al almacenamiento de comprobantes ---

var (
	mediaStoragePath string
	once             sync.Once
)

// initStoragePath inicializa la ruta absoluta a la carpeta media_storage.
// La carpeta se crea junto al ejecutable.
func initStoragePath() {
	once.Do(func() {
		executable, err := os.Executable()
		if err != nil {
			log.Fatalf("FATAL: no se pudo obtener la ruta del ejecutable: %v", err)
		}
		executableDir := filepath.Dir(executable)
		mediaStoragePath = filepath.Join(executableDir, "media_storage")

		if err := os.MkdirAll(mediaStoragePath, os.ModePerm); err != nil {
			log.Fatalf("FATAL: no se pudo crear el directorio de comprobantes en %s: %v", mediaStoragePath, err)
		}
		log.Printf("Almacenamiento de comprobantes inicializado en: %s", mediaStoragePath)
	})
}

// jsonResponse - estructura estándar de respuesta del API.
type jsonResponse struct {
	Status  string      `json:"status"` // "success" o "error"
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ActualizarPedidoBody es el cuerpo del POST de actualización de pedido desde
// el dashboard. Se valida localmente y se reexpide al webhook de n8n.
type ActualizarPedidoBody struct {
	NuevoEstado     string          `json:"nuevo_estado"`
	MetodoPago      string          `json:"metodo_pago"`
	Pagos2P         []models.Pago2P `json:"pagos_2_pagos,omitempty"`
	Nota            string          `json:"nota,omitempty"`
	FechaReagenda   string          `json:"fecha_reagenda,omitempty"`
	ComprobanteB64  string          `json:"comprobante_base64,omitempty"`
	ComprobanteMime string          `json:"comprobante_mime,omitempty"`
}

// AddGastoBody es el cuerpo del POST de registro de gasto.
type AddGastoBody struct {
	Mensajero   string  `json:"mensajero,omitempty"` // solo admin puede registrar para otro
	Fecha       string  `json:"fecha"`
	Monto       float64 `json:"monto"`
	Descripcion string  `json:"descripcion"`
	Comprobante string  `json:"comprobante,omitempty"` // nombre de archivo ya subido
}

// UploadFileResponse - respuesta de la subida de un comprobante.
type UploadFileResponse struct {
	Filename string `json:"filename"`
}

// --- Funciones auxiliares para respuestas JSON ---

func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(jsonResponse{Status: "error", Message: message})
}

func writeJSONSuccess(w http.ResponseWriter, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(jsonResponse{Status: "success", Message: message, Data: data})
}

// usuarioDesdeContexto obtiene el usuario autenticado que dejó AuthMiddleware.
func usuarioDesdeContexto(r *http.Request) (models.Usuario, bool) {
	usuario, ok := r.Context().Value(UserContextKey).(models.Usuario)
	return usuario, ok
}

// --- Pedidos ---

// GetPedidos devuelve los pedidos de una fecha (vista de admin), con filtros
// opcionales por tienda, mensajero y estado.
func GetPedidos(w http.ResponseWriter, r *http.Request) {
	fecha, err := utils.ValidateFecha(r.URL.Query().Get("fecha"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if estado := r.URL.Query().Get("estado"); estado != "" {
		if errEstado := utils.ValidateEstadoPedido(estado); errEstado != nil {
			writeJSONError(w, http.StatusBadRequest, errEstado.Error())
			return
		}
	}

	pedidos, err := db.GetPedidosByFecha(fecha)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Error al obtener los pedidos")
		return
	}

	pedidos = filtrarPedidos(pedidos,
		r.URL.Query().Get("tienda"),
		r.URL.Query().Get("mensajero"),
		r.URL.Query().Get("estado"))
	writeJSONSuccess(w, fmt.Sprintf("%d pedidos", len(pedidos)), pedidos)
}

// filtrarPedidos aplica los filtros opcionales de la vista de admin. Los
// nombres se comparan normalizados, igual que la agrupación de liquidaciones.
func filtrarPedidos(pedidos []models.Pedido, tienda, mensajero, estado string) []models.Pedido {
	if tienda == "" && mensajero == "" && estado == "" {
		return pedidos
	}

	tienda = liquidacion.NormalizarActor(tienda)
	mensajero = liquidacion.NormalizarActor(mensajero)

	filtrados := make([]models.Pedido, 0, len(pedidos))
	for i := range pedidos {
		p := pedidos[i]
		if tienda != "" && liquidacion.NormalizarActor(p.Tienda) != tienda {
			continue
		}
		if mensajero != "" && liquidacion.NormalizarActor(p.Mensajero.String) != mensajero {
			continue
		}
		if estado != "" && p.Estado != estado {
			continue
		}
		filtrados = append(filtrados, p)
	}
	return filtrados
}

// GetPedidosSinAsignar devuelve los pedidos de una fecha sin mensajero.
func GetPedidosSinAsignar(w http.ResponseWriter, r *http.Request) {
	fecha, err := utils.ValidateFecha(r.URL.Query().Get("fecha"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	pedidos, err := db.GetPedidosSinAsignar(fecha)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Error al obtener los pedidos sin asignar")
		return
	}
	writeJSONSuccess(w, fmt.Sprintf("%d pedidos sin asignar", len(pedidos)), pedidos)
}

// GetMisPedidos devuelve los pedidos del mensajero autenticado para una fecha.
func GetMisPedidos(w http.ResponseWriter, r *http.Request) {
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
	writeJSONSuccess(w, fmt.Sprintf("%d pedidos", len(pedidos)), pedidos)
}

// GetPedidoDetails devuelve el detalle de un pedido. Un mensajero solo puede
// ver sus propios pedidos; el admin puede ver cualquiera.
func GetPedidoDetails(w http.ResponseWriter, r *http.Request) {
	usuario, ok := usuarioDesdeContexto(r)
	if !ok {
		writeJSONError(w, http.StatusForbidden, "Usuario no encontrado en el contexto")
		return
	}

	pedidoID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "ID de pedido inválido")
		return
	}

	pedido, err := db.GetPedidoByID(pedidoID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	if usuario.Role != constants.ROLE_ADMIN && !esPedidoDelMensajero(&pedido, usuario.Nombre) {
		writeJSONError(w, http.StatusForbidden, "El pedido no está asignado a este mensajero")
		return
	}
	writeJSONSuccess(w, "Pedido encontrado", pedido)
}

func esPedidoDelMensajero(p *models.Pedido, mensajero string) bool {
	if !p.Mensajero.Valid {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(p.Mensajero.String), strings.TrimSpace(mensajero))
}

// GetPedidoQR genera el QR del enlace de seguimiento de un pedido, para
// imprimir en la etiqueta del paquete.
func GetPedidoQR(w http.ResponseWriter, r *http.Request) {
	deps := depsDesdeContexto(r)
	pedidoID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "ID de pedido inválido")
		return
	}

	if _, err := db.GetPedidoByID(pedidoID); err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	qrBytes, err := utils.GenerateSeguimientoQR(deps.Config.PublicBaseURL, pedidoID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Error al generar el código QR")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(qrBytes)
}

// ActualizarPedidoHandler valida un cambio de estado y lo reexpide al webhook
// actualizar-pedido. El dashboard no escribe pedidos directamente: el flujo de
// n8n es el único escritor.
func ActualizarPedidoHandler(w http.ResponseWriter, r *http.Request) {
	deps := depsDesdeContexto(r)
	usuario, ok := usuarioDesdeContexto(r)
	if !ok {
		writeJSONError(w, http.StatusForbidden, "Usuario no encontrado en el contexto")
		return
	}

	pedidoID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "ID de pedido inválido")
		return
	}

	var body ActualizarPedidoBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Cuerpo de la petición inválido: "+err.Error())
		return
	}

	if err := utils.ValidateEstadoPedido(body.NuevoEstado); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.NuevoEstado == constants.ESTADO_ENTREGADO {
		if err := utils.ValidateMetodoPago(body.MetodoPago); err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if body.NuevoEstado == constants.ESTADO_REAGENDADO {
		if _, err := utils.ValidateFecha(body.FechaReagenda); err != nil {
			writeJSONError(w, http.StatusBadRequest, "La reagenda necesita fecha: "+err.Error())
			return
		}
	}

	pedido, err := db.GetPedidoByID(pedidoID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	if usuario.Role != constants.ROLE_ADMIN && !esPedidoDelMensajero(&pedido, usuario.Nombre) {
		writeJSONError(w, http.StatusForbidden, "El pedido no está asignado a este mensajero")
		return
	}

	req := webhooks.ActualizarPedidoRequest{
		PedidoID:        pedidoID,
		Mensajero:       pedido.Mensajero.String,
		Usuario:         usuario.Nombre,
		NuevoEstado:     body.NuevoEstado,
		MetodoPago:      body.MetodoPago,
		Pagos2P:         body.Pagos2P,
		Nota:            body.Nota,
		FechaReagenda:   body.FechaReagenda,
		ComprobanteB64:  body.ComprobanteB64,
		ComprobanteMime: body.ComprobanteMime,
	}
	if err := deps.Webhooks.ActualizarPedido(r.Context(), req); err != nil {
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSONSuccess(w, fmt.Sprintf("Pedido #%d actualizado a '%s'", pedidoID, body.NuevoEstado), nil)
}

// --- Gastos ---

// GetGastos devuelve los gastos de un mensajero en una fecha. El admin puede
// consultar cualquier mensajero; un mensajero solo se consulta a sí mismo.
func GetGastos(w http.ResponseWriter, r *http.Request) {
	usuario, ok := usuarioDesdeContexto(r)
	if !ok {
		writeJSONError(w, http.StatusForbidden, "Usuario no encontrado en el contexto")
		return
	}

	mensajero := r.URL.Query().Get("mensajero")
	if mensajero == "" || usuario.Role != constants.ROLE_ADMIN {
		mensajero = usuario.Nombre
	}
	fecha, err := utils.ValidateFecha(r.URL.Query().Get("fecha"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	gastos, err := db.GetGastosByMensajeroYFecha(mensajero, fecha)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Error al obtener los gastos")
		return
	}
	writeJSONSuccess(w, fmt.Sprintf("%d gastos, total %.0f", len(gastos), db.TotalGastos(gastos)), gastos)
}

// AddGastoHandler registra un gasto nuevo del día.
func AddGastoHandler(w http.ResponseWriter, r *http.Request) {
	usuario, ok := usuarioDesdeContexto(r)
	if !ok {
		writeJSONError(w, http.StatusForbidden, "Usuario no encontrado en el contexto")
		return
	}

	var body AddGastoBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Cuerpo de la petición inválido: "+err.Error())
		return
	}

	mensajero := body.Mensajero
	if mensajero == "" || usuario.Role != constants.ROLE_ADMIN {
		mensajero = usuario.Nombre
	}
	fecha, err := utils.ValidateFecha(body.Fecha)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidateMontoGasto(body.Monto); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(body.Descripcion) == "" {
		writeJSONError(w, http.StatusBadRequest, "El gasto necesita una descripción")
		return
	}

	gasto := models.Gasto{
		Mensajero:   mensajero,
		Fecha:       fecha,
		Monto:       body.Monto,
		Descripcion: strings.TrimSpace(body.Descripcion),
	}
	if body.Comprobante != "" {
		gasto.Comprobante.String = body.Comprobante
		gasto.Comprobante.Valid = true
	}

	id, err := db.AddGasto(gasto)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Error al registrar el gasto")
		return
	}
	gasto.ID = id
	writeJSONSuccess(w, fmt.Sprintf("Gasto #%d registrado", id), gasto)
}

// --- Mensajeros ---

// GetMensajerosHandler devuelve la lista de mensajeros activos.
func GetMensajerosHandler(w http.ResponseWriter, r *http.Request) {
	mensajeros, err := db.GetMensajeros()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Error al obtener los mensajeros")
		return
	}
	writeJSONSuccess(w, fmt.Sprintf("%d mensajeros", len(mensajeros)), mensajeros)
}

// --- Comprobantes (media) ---

// ServeMediaHandler sirve un comprobante guardado localmente. El nombre de
// archivo se valida contra escapes de ruta.
func ServeMediaHandler(w http.ResponseWriter, r *http.Request) {
	initStoragePath()

	filename := chi.URLParam(r, "filename")
	if filename == "" {
		writeJSONError(w, http.StatusBadRequest, "Falta el nombre de archivo")
		return
	}
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		writeJSONError(w, http.StatusBadRequest, "Nombre de archivo inválido")
		return
	}

	filePath := filepath.Join(mediaStoragePath, filename)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filePath)
}

// UploadMediaHandler recibe un comprobante (foto de recibo SINPE o de gasto),
// lo guarda con nombre único y devuelve el nombre. Si la petición trae
// pedido_id, el comprobante queda asociado al pedido.
func UploadMediaHandler(w http.ResponseWriter, r *http.Request) {
	initStoragePath()

	if err := r.ParseMultipartForm(32 << 20); err != nil { // 32 MB
		writeJSONError(w, http.StatusBadRequest, "Error al leer el formulario multipart: "+err.Error())
		return
	}

	file, handler, err := r.FormFile("comprobante")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Falta el archivo 'comprobante' en el formulario: "+err.Error())
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(handler.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".pdf":
	default:
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Tipo de archivo no permitido: '%s'", ext))
		return
	}

	filename := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(mediaStoragePath, filename))
	if err != nil {
		log.Printf("UploadMediaHandler: error al crear el archivo %s: %v", filename, err)
		writeJSONError(w, http.StatusInternalServerError, "Error al guardar el comprobante")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		log.Printf("UploadMediaHandler: error al copiar el archivo %s: %v", filename, err)
		writeJSONError(w, http.StatusInternalServerError, "Error al guardar el comprobante")
		return
	}

	if pedidoIDStr := r.FormValue("pedido_id"); pedidoIDStr != "" {
		pedidoID, errParse := strconv.ParseInt(pedidoIDStr, 10, 64)
		if errParse != nil {
			writeJSONError(w, http.StatusBadRequest, "pedido_id inválido")
			return
		}
		if errUpdate := db.UpdatePedidoComprobante(pedidoID, filename); errUpdate != nil {
			writeJSONError(w, http.StatusNotFound, errUpdate.Error())
			return
		}
	}

	writeJSONSuccess(w, "Comprobante guardado", UploadFileResponse{Filename: filename})
}
