package constants

import "time"

// Estados de un pedido a lo largo del día de reparto.
// Estos valores viajan tal cual hacia y desde los webhooks de n8n.
const (
	ESTADO_ENTREGADO  = "entregado"
	ESTADO_PENDIENTE  = "pendiente"
	ESTADO_DEVOLUCION = "devolucion"
	ESTADO_REAGENDADO = "reagendado"
	ESTADO_CANCELADO  = "cancelado"
)

// Métodos de pago de un pedido.
const (
	PAGO_EFECTIVO = "efectivo"
	PAGO_SINPE    = "sinpe"
	PAGO_TARJETA  = "tarjeta"
	PAGO_2PAGOS   = "2pagos"
	PAGO_SIN_PAGO = "sin_pago"
)

// Roles de usuario del dashboard.
const (
	ROLE_ADMIN     = "admin"
	ROLE_MENSAJERO = "mensajero"
)

// Marcas cuyas tiendas liquidan como mensajeros: efectivo menos gastos.
// El resto de tiendas liquida por el total recaudado sin deducir gastos.
// La comparación es por substring en mayúsculas sobre el nombre de la tienda.
var MarcasLiquidanComoMensajero = []string{"ALL STARS", "MAGIC STARS"}

// MENSAJERO_PRUEBA es la cuenta de pruebas de operaciones. Sus pedidos se
// reportan aparte en el resumen del dashboard y nunca suman a las métricas.
const MENSAJERO_PRUEBA = "PRUEBA"

// DUPLICATE_KEY_MARKER es el fragmento de error que devuelve el ledger cuando
// la liquidación ya existe (violación de unicidad mensajero+fecha). Un envío
// que falla con este marcador se trata como liquidación exitosa, no como error.
const DUPLICATE_KEY_MARKER = "duplicate key value violates unique constraint"

// Frases de éxito conocidas en las respuestas de texto libre de los webhooks
// de rutas. La detección es por substring sin distinguir mayúsculas.
var FrasesExitoRutas = []string{
	"rutas generadas",
	"ruta generada",
	"reasignacion completada",
	"reasignación completada",
	"rutas asignadas correctamente",
	"success",
}

// FECHA_FORMATO es el formato canónico de fecha en toda la aplicación
// (querystrings, payloads de webhooks y columnas DATE).
const FECHA_FORMATO = "2006-01-02"

// MesesES mapea el mes a su nombre en español para fechas de despliegue.
var MesesES = map[time.Month]string{
	time.January:   "enero",
	time.February:  "febrero",
	time.March:     "marzo",
	time.April:     "abril",
	time.May:       "mayo",
	time.June:      "junio",
	time.July:      "julio",
	time.August:    "agosto",
	time.September: "septiembre",
	time.October:   "octubre",
	time.November:  "noviembre",
	time.December:  "diciembre",
}
