package liquidacion

import (
	"database/sql"
	"testing"

	"magicstars/internal/constants"
	"magicstars/internal/models"
)

func ns(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func pedido(estado, metodo string, monto float64) models.Pedido {
	return models.Pedido{Estado: estado, MetodoPago: metodo, MontoTotal: monto}
}

func pedido2P(estado string, monto float64, efectivo, sinpe sql.NullString) models.Pedido {
	return models.Pedido{
		Estado:     estado,
		MetodoPago: constants.PAGO_2PAGOS,
		MontoTotal: monto,
		Efectivo2P: efectivo,
		Sinpe2P:    sinpe,
	}
}

func TestNormalizarActor(t *testing.T) {
	tests := []struct {
		entrada string
		want    string
	}{
		{"ana", "ANA"},
		{"  Ana  ", "ANA"},
		{"ANA", "ANA"},
		{"", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := NormalizarActor(tt.entrada); got != tt.want {
			t.Errorf("NormalizarActor(%q) = %q, quiere %q", tt.entrada, got, tt.want)
		}
	}
}

// El día de ANA: dos entregados en efectivo, un entregado por sinpe, un
// pendiente y una devolución. Solo los entregados suman dinero.
func TestCalcularDiaCompleto(t *testing.T) {
	pedidos := []models.Pedido{
		pedido(constants.ESTADO_ENTREGADO, constants.PAGO_EFECTIVO, 3000),
		pedido(constants.ESTADO_ENTREGADO, constants.PAGO_EFECTIVO, 2000),
		pedido(constants.ESTADO_ENTREGADO, constants.PAGO_SINPE, 3000),
		pedido(constants.ESTADO_PENDIENTE, constants.PAGO_EFECTIVO, 9999),
		pedido(constants.ESTADO_DEVOLUCION, constants.PAGO_SINPE, 5000),
	}

	liq := Calcular(pedidos, 10000, 1000)

	if liq.TotalRecaudado != 8000 {
		t.Errorf("TotalRecaudado = %.0f, quiere 8000", liq.TotalRecaudado)
	}
	if liq.PagosEfectivo != 5000 {
		t.Errorf("PagosEfectivo = %.0f, quiere 5000", liq.PagosEfectivo)
	}
	if liq.PagosSinpe != 3000 {
		t.Errorf("PagosSinpe = %.0f, quiere 3000", liq.PagosSinpe)
	}
	if liq.PagosTarjeta != 0 {
		t.Errorf("PagosTarjeta = %.0f, quiere 0", liq.PagosTarjeta)
	}
	// 10000 de plata inicial + 5000 de efectivo - 1000 de gastos.
	if liq.MontoFinal != 14000 {
		t.Errorf("MontoFinal = %.0f, quiere 14000", liq.MontoFinal)
	}
	if len(liq.Pedidos) != 5 {
		t.Errorf("la liquidación debe conservar los 5 pedidos, tiene %d", len(liq.Pedidos))
	}
}

func TestCalcularSinPedidos(t *testing.T) {
	liq := Calcular(nil, 5000, 200)
	if liq.TotalRecaudado != 0 || liq.PagosEfectivo != 0 {
		t.Errorf("sin pedidos no debe haber recaudación: %+v", liq)
	}
	if liq.MontoFinal != 4800 {
		t.Errorf("MontoFinal = %.0f, quiere 4800 (plata menos gastos)", liq.MontoFinal)
	}
}

func TestCalcular2Pagos(t *testing.T) {
	tests := []struct {
		name         string
		pedidos      []models.Pedido
		wantEfectivo float64
		wantSinpe    float64
		wantTarjeta  float64
	}{
		{
			name: "sub-montos válidos",
			pedidos: []models.Pedido{
				pedido2P(constants.ESTADO_ENTREGADO, 10000, ns("6000"), ns("4000")),
			},
			wantEfectivo: 6000,
			wantSinpe:    4000,
		},
		{
			name: "sub-monto ilegible cuenta como cero",
			pedidos: []models.Pedido{
				pedido2P(constants.ESTADO_ENTREGADO, 10000, ns("seis mil"), ns("4000")),
			},
			wantEfectivo: 0,
			wantSinpe:    4000,
		},
		{
			name: "sub-montos ausentes cuentan como cero",
			pedidos: []models.Pedido{
				pedido2P(constants.ESTADO_ENTREGADO, 10000, sql.NullString{}, sql.NullString{}),
			},
			wantEfectivo: 0,
			wantSinpe:    0,
		},
		{
			name: "sub-montos con espacios",
			pedidos: []models.Pedido{
				pedido2P(constants.ESTADO_ENTREGADO, 7000, ns(" 5000 "), ns(" 2000")),
			},
			wantEfectivo: 5000,
			wantSinpe:    2000,
		},
		{
			name: "2pagos no entregado no suma nada",
			pedidos: []models.Pedido{
				pedido2P(constants.ESTADO_PENDIENTE, 10000, ns("6000"), ns("4000")),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			liq := Calcular(tt.pedidos, 0, 0)
			if liq.PagosEfectivo != tt.wantEfectivo {
				t.Errorf("PagosEfectivo = %.0f, quiere %.0f", liq.PagosEfectivo, tt.wantEfectivo)
			}
			if liq.PagosSinpe != tt.wantSinpe {
				t.Errorf("PagosSinpe = %.0f, quiere %.0f", liq.PagosSinpe, tt.wantSinpe)
			}
			// Un 2PAGOS jamás aporta a tarjeta.
			if liq.PagosTarjeta != tt.wantTarjeta {
				t.Errorf("PagosTarjeta = %.0f, quiere %.0f", liq.PagosTarjeta, tt.wantTarjeta)
			}
		})
	}
}

// Mismos pedidos, mismas sumas: el cálculo no tiene estado escondido.
func TestCalcularEsDeterminista(t *testing.T) {
	pedidos := []models.Pedido{
		pedido(constants.ESTADO_ENTREGADO, constants.PAGO_EFECTIVO, 1500),
		pedido2P(constants.ESTADO_ENTREGADO, 8000, ns("3000"), ns("5000")),
		pedido(constants.ESTADO_REAGENDADO, constants.PAGO_TARJETA, 2000),
	}

	primera := Calcular(pedidos, 1000, 300)
	for i := 0; i < 50; i++ {
		otra := Calcular(pedidos, 1000, 300)
		if otra.TotalRecaudado != primera.TotalRecaudado ||
			otra.PagosEfectivo != primera.PagosEfectivo ||
			otra.PagosSinpe != primera.PagosSinpe ||
			otra.MontoFinal != primera.MontoFinal {
			t.Fatalf("corrida %d difiere: %+v vs %+v", i, otra, primera)
		}
	}
}

func TestEsTiendaComoMensajero(t *testing.T) {
	tests := []struct {
		tienda string
		want   bool
	}{
		{"ALL STARS", true},
		{"all stars heredia", true},
		{"Magic Stars Centro", true},
		{"  ALL STARS  ", true},
		{"TechMart", false},
		{"Estrella Roja", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := EsTiendaComoMensajero(tt.tienda); got != tt.want {
			t.Errorf("EsTiendaComoMensajero(%q) = %v, quiere %v", tt.tienda, got, tt.want)
		}
	}
}

func TestCalcularTienda(t *testing.T) {
	pedidosAllStars := []models.Pedido{
		pedido(constants.ESTADO_ENTREGADO, constants.PAGO_EFECTIVO, 1000),
		pedido(constants.ESTADO_PENDIENTE, constants.PAGO_EFECTIVO, 500),
	}
	pedidosTechMart := []models.Pedido{
		pedido(constants.ESTADO_ENTREGADO, constants.PAGO_EFECTIVO, 2000),
		pedido(constants.ESTADO_ENTREGADO, constants.PAGO_SINPE, 3000),
		pedido(constants.ESTADO_DEVOLUCION, constants.PAGO_EFECTIVO, 700),
	}

	// Marca propia: efectivo menos gastos.
	allStars := CalcularTienda("All Stars Heredia", pedidosAllStars, 0, 200)
	if allStars.MontoFinal != 800 {
		t.Errorf("All Stars: MontoFinal = %.0f, quiere 800 (efectivo 1000 - gastos 200)", allStars.MontoFinal)
	}
	if allStars.Entregados != 1 || allStars.Pendientes != 1 {
		t.Errorf("All Stars: conteos = %d entregados / %d pendientes, quiere 1/1",
			allStars.Entregados, allStars.Pendientes)
	}

	// Tienda externa: total recaudado sin deducción.
	techMart := CalcularTienda("TechMart", pedidosTechMart, 0, 200)
	if techMart.MontoFinal != 5000 {
		t.Errorf("TechMart: MontoFinal = %.0f, quiere 5000 (total recaudado)", techMart.MontoFinal)
	}
	if techMart.Entregados != 2 || techMart.Devueltos != 1 {
		t.Errorf("TechMart: conteos = %d entregados / %d devueltos, quiere 2/1",
			techMart.Entregados, techMart.Devueltos)
	}
}
