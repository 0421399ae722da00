package models

// Liquidacion es el agregado financiero de un mensajero para una fecha (o el
// inicio de un rango). Se recalcula completo en cada carga, nunca se persiste
// localmente: la única copia durable vive en el ledger externo.
type Liquidacion struct {
	Mensajero      string   `json:"mensajero"`
	Fecha          string   `json:"fecha"` // YYYY-MM-DD, inicio del rango si aplica
	TotalRecaudado float64  `json:"total_recaudado"`
	PagosEfectivo  float64  `json:"pagos_efectivo"`
	PagosSinpe     float64  `json:"pagos_sinpe"`
	PagosTarjeta   float64  `json:"pagos_tarjeta"`
	PlataInicial   float64  `json:"plata_inicial"`
	TotalGastos    float64  `json:"total_gastos"`
	MontoFinal     float64  `json:"monto_final"`
	Pedidos        []Pedido `json:"pedidos"`
	Gastos         []Gasto  `json:"gastos"`
	YaLiquidada    bool     `json:"ya_liquidada"`
}

// Editable indica si la liquidación todavía admite cambios de plata inicial.
func (l *Liquidacion) Editable() bool {
	return !l.YaLiquidada
}

// TienePendientes reporta si queda algún pedido sin resolver. Una liquidación
// con pendientes no puede confirmarse contra el ledger.
func (l *Liquidacion) TienePendientes() bool {
	for i := range l.Pedidos {
		if l.Pedidos[i].Estado == "pendiente" {
			return true
		}
	}
	return false
}

// TiendaLiquidacion es el mismo agregado pero por tienda, con el desglose de
// pedidos por estado que pide el reporte de tiendas.
type TiendaLiquidacion struct {
	Liquidacion
	Tienda      string `json:"tienda"`
	Entregados  int    `json:"entregados"`
	Pendientes  int    `json:"pendientes"`
	Devueltos   int    `json:"devueltos"`
	Reagendados int    `json:"reagendados"`
}

// LiquidacionVencida es una entrada del webhook alerta-liquidaciones-vencidas,
// enriquecida localmente con los totales recalculados de esa fecha.
type LiquidacionVencida struct {
	Fecha          string  `json:"fecha"`
	Mensajero      string  `json:"mensajero"`
	TotalRecaudado float64 `json:"total_recaudado"`
	YaLiquidado    bool    `json:"ya_liquidado"`
	CreatedAt      string  `json:"created_at"`

	// Calculados localmente al enriquecer la alerta.
	MontoFinal    float64 `json:"monto_final"`
	PagosEfectivo float64 `json:"pagos_efectivo"`
	PedidosTotal  int     `json:"pedidos_total"`
}
