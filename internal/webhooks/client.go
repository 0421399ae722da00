// Archivo: internal/webhooks/client.go
//
// Cliente de los webhooks de n8n alojados en Railway. Para el dashboard son
// RPCs opacos: el ledger de liquidaciones, la actualización de pedidos y la
// generación/reasignación de rutas viven del otro lado.
package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"magicstars/internal/models"
)

// ErrYaLiquidada señala que el ledger ya tiene una liquidación para ese
// mensajero y fecha. Quien confirma debe tratarlo como éxito, no como error:
// otro proceso liquidó primero.
var ErrYaLiquidada = errors.New("la liquidación ya existe en el ledger")

// Client llama a los webhooks externos. No reintenta nunca: los errores se
// devuelven al llamador y la recuperación es del usuario.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient crea el cliente de webhooks sobre la URL base de Railway.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// AddLiquidacionRequest es el cuerpo de POST /webhook/add-liquidacion.
type AddLiquidacionRequest struct {
	Mensajero         string  `json:"mensajero"`
	Fecha             string  `json:"fecha"`
	PlataInicial      float64 `json:"plata_inicial"`
	TotalRecaudado    float64 `json:"total_recaudado"`
	TotalGastos       float64 `json:"total_gastos"`
	MontoFinal        float64 `json:"monto_final"`
	PedidosEntregados int     `json:"pedidos_entregados"`
	PedidosTotal      int     `json:"pedidos_total"`
	PagosEfectivo     float64 `json:"pagos_efectivo"`
	PagosSinpe        float64 `json:"pagos_sinpe"`
	PagosTarjeta      float64 `json:"pagos_tarjeta"`
}

// ActualizarPedidoRequest es el cuerpo de POST /webhook/actualizar-pedido.
type ActualizarPedidoRequest struct {
	PedidoID        int64           `json:"pedido_id"`
	Mensajero       string          `json:"mensajero"`
	Usuario         string          `json:"usuario"` // quién ejecuta el cambio
	NuevoEstado     string          `json:"nuevo_estado"`
	MetodoPago      string          `json:"metodo_pago"`
	Pagos2P         []models.Pago2P `json:"pagos_2_pagos,omitempty"`
	Nota            string          `json:"nota,omitempty"`
	FechaReagenda   string          `json:"fecha_reagenda,omitempty"`
	ComprobanteB64  string          `json:"comprobante_base64,omitempty"`
	ComprobanteMime string          `json:"comprobante_mime,omitempty"`
}

// post ejecuta un POST JSON contra un webhook y devuelve el status y el cuerpo
// crudo de la respuesta. Cada envío lleva una clave de idempotencia propia.
func (c *Client) post(ctx context.Context, path string, body interface{}) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		log.Printf("webhooks: error al preparar el cuerpo para %s: %v", path, err)
		return 0, nil, fmt.Errorf("error al preparar la petición: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		log.Printf("webhooks: error al crear la petición HTTP a %s: %v", path, err)
		return 0, nil, fmt.Errorf("error al crear la petición HTTP: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("webhooks: error al ejecutar la petición a %s: %v", path, err)
		return 0, nil, fmt.Errorf("error al llamar al webhook %s: %w", path, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("webhooks: error al leer la respuesta de %s: %v", path, err)
		return resp.StatusCode, nil, fmt.Errorf("error al leer la respuesta del webhook: %w", err)
	}
	return resp.StatusCode, responseBody, nil
}

// AddLiquidacion envía una liquidación al ledger externo. El envío es
// efectivamente "crear si no existe": si el ledger responde con el error de
// clave duplicada se devuelve ErrYaLiquidada, que el llamador trata como
// éxito-ya-liquidada.
func (c *Client) AddLiquidacion(ctx context.Context, liq AddLiquidacionRequest) error {
	status, body, err := c.post(ctx, "/webhook/add-liquidacion", liq)
	if err != nil {
		return err
	}

	if status >= 200 && status < 300 {
		log.Printf("Liquidación de '%s' (%s) registrada en el ledger. Monto final: %.0f", liq.Mensajero, liq.Fecha, liq.MontoFinal)
		return nil
	}

	errLedger := clasificarErrorLedger(status, body)
	if errors.Is(errLedger, ErrYaLiquidada) {
		log.Printf("AddLiquidacion: el ledger reporta que '%s' (%s) ya estaba liquidada.", liq.Mensajero, liq.Fecha)
	} else {
		log.Printf("AddLiquidacion: el ledger rechazó la liquidación de '%s' (%s): estado %d, cuerpo: %s", liq.Mensajero, liq.Fecha, status, string(body))
	}
	return errLedger
}

// checkResponse modela la respuesta de POST /webhook/check-liquidacion.
type checkResponse struct {
	YaLiquidado bool `json:"ya_liquidado"`
}

// CheckLiquidacion consulta si el ledger ya registra una liquidación para el
// mensajero y la fecha. La consulta es consultiva: puede correr en paralelo
// con una confirmación y quedar obsoleta.
func (c *Client) CheckLiquidacion(ctx context.Context, mensajero, fecha string) (bool, error) {
	reqBody := map[string]string{"mensajero": mensajero, "fecha": fecha}
	status, body, err := c.post(ctx, "/webhook/check-liquidacion", reqBody)
	if err != nil {
		return false, err
	}
	if status < 200 || status >= 300 {
		return false, fmt.Errorf("el webhook check-liquidacion respondió estado %d: %s", status, extraerMensajeError(body))
	}

	var parsed checkResponse
	if errUnmarshal := json.Unmarshal(body, &parsed); errUnmarshal != nil {
		log.Printf("CheckLiquidacion: respuesta ilegible para '%s' (%s): %v. Cuerpo: %s", mensajero, fecha, errUnmarshal, string(body))
		return false, fmt.Errorf("error al procesar la respuesta de check-liquidacion: %w", errUnmarshal)
	}
	return parsed.YaLiquidado, nil
}

// GetLiquidacionesVencidas obtiene la alerta de liquidaciones sin cerrar.
func (c *Client) GetLiquidacionesVencidas(ctx context.Context) ([]models.LiquidacionVencida, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/webhook/alerta-liquidaciones-vencidas", nil)
	if err != nil {
		return nil, fmt.Errorf("error al crear la petición HTTP: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("GetLiquidacionesVencidas: error al llamar al webhook: %v", err)
		return nil, fmt.Errorf("error al consultar liquidaciones vencidas: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error al leer la respuesta del webhook: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("el webhook de alertas respondió estado %d: %s", resp.StatusCode, extraerMensajeError(body))
	}

	var vencidas []models.LiquidacionVencida
	if errUnmarshal := json.Unmarshal(body, &vencidas); errUnmarshal != nil {
		log.Printf("GetLiquidacionesVencidas: respuesta ilegible: %v. Cuerpo: %s", errUnmarshal, string(body))
		return nil, fmt.Errorf("error al procesar la lista de liquidaciones vencidas: %w", errUnmarshal)
	}
	return vencidas, nil
}

// ActualizarPedido propaga un cambio de estado de pedido al flujo de n8n.
// Cualquier respuesta fuera de 2xx es un error duro para el usuario.
func (c *Client) ActualizarPedido(ctx context.Context, req ActualizarPedidoRequest) error {
	status, body, err := c.post(ctx, "/webhook/actualizar-pedido", req)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		log.Printf("ActualizarPedido: el webhook rechazó el pedido #%d: estado %d, cuerpo: %s", req.PedidoID, status, string(body))
		return fmt.Errorf("el webhook actualizar-pedido respondió estado %d: %s", status, extraerMensajeError(body))
	}
	log.Printf("Pedido #%d actualizado a '%s' vía webhook.", req.PedidoID, req.NuevoEstado)
	return nil
}

// GenerarRutas pide la generación de rutas del día. La respuesta es texto
// libre; el éxito se detecta por frases conocidas (ver classifier.go).
func (c *Client) GenerarRutas(ctx context.Context, fecha string, capacidad int) (string, error) {
	reqBody := map[string]interface{}{"fecha": fecha, "capacidad": capacidad}
	status, body, err := c.post(ctx, "/webhook/generar-rutas", reqBody)
	if err != nil {
		return "", err
	}

	respuesta := string(body)
	if status >= 200 && status < 300 && EsRespuestaExitosaRuta(respuesta) {
		log.Printf("Rutas generadas para %s (capacidad %d).", fecha, capacidad)
		return respuesta, nil
	}
	log.Printf("GenerarRutas: respuesta no exitosa (estado %d): %s", status, respuesta)
	return respuesta, fmt.Errorf("la generación de rutas no confirmó éxito: %s", extraerMensajeError(body))
}

// ReasignarRuta mueve la ruta de un mensajero a otro para una fecha.
func (c *Client) ReasignarRuta(ctx context.Context, mensajeroAnterior, mensajeroNuevo, fecha string) (string, error) {
	reqBody := map[string]string{
		"mensajero_anterior": mensajeroAnterior,
		"mensajero_nuevo":    mensajeroNuevo,
		"fecha":              fecha,
	}
	status, body, err := c.post(ctx, "/webhook/reasignar-ruta", reqBody)
	if err != nil {
		return "", err
	}

	respuesta := string(body)
	if status >= 200 && status < 300 && EsRespuestaExitosaRuta(respuesta) {
		log.Printf("Ruta del %s reasignada de '%s' a '%s'.", fecha, mensajeroAnterior, mensajeroNuevo)
		return respuesta, nil
	}
	log.Printf("ReasignarRuta: respuesta no exitosa (estado %d): %s", status, respuesta)
	return respuesta, fmt.Errorf("la reasignación de ruta no confirmó éxito: %s", extraerMensajeError(body))
}
