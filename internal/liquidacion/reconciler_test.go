package liquidacion

import (
	"context"
	"errors"
	"testing"

	"magicstars/internal/constants"
	"magicstars/internal/models"
	"magicstars/internal/webhooks"
)

// ledgerFalso simula el ledger externo en memoria.
type ledgerFalso struct {
	registradas map[string]bool
	errCheck    error
	errAdd      error
	envios      int
}

func nuevoLedgerFalso() *ledgerFalso {
	return &ledgerFalso{registradas: make(map[string]bool)}
}

func (l *ledgerFalso) CheckLiquidacion(ctx context.Context, mensajero, fecha string) (bool, error) {
	if l.errCheck != nil {
		return false, l.errCheck
	}
	return l.registradas[mensajero+"|"+fecha], nil
}

func (l *ledgerFalso) AddLiquidacion(ctx context.Context, liq webhooks.AddLiquidacionRequest) error {
	l.envios++
	if l.errAdd != nil {
		return l.errAdd
	}
	k := liq.Mensajero + "|" + liq.Fecha
	if l.registradas[k] {
		// El ledger real responde con la violación de unicidad; el cliente la
		// traduce a ErrYaLiquidada antes de llegar aquí.
		return webhooks.ErrYaLiquidada
	}
	l.registradas[k] = true
	return nil
}

// cacheFalso guarda verificaciones en memoria.
type cacheFalso struct {
	valores map[string]bool
	gets    int
}

func nuevoCacheFalso() *cacheFalso {
	return &cacheFalso{valores: make(map[string]bool)}
}

func (c *cacheFalso) GetVerificacion(ctx context.Context, mensajero, fecha string) (bool, bool) {
	c.gets++
	v, ok := c.valores[mensajero+"|"+fecha]
	return v, ok
}

func (c *cacheFalso) SetVerificacion(ctx context.Context, mensajero, fecha string, yaLiquidada bool) {
	c.valores[mensajero+"|"+fecha] = yaLiquidada
}

func liqPrueba(mensajero, fecha string) *models.Liquidacion {
	return &models.Liquidacion{
		Mensajero:     mensajero,
		Fecha:         fecha,
		PagosEfectivo: 5000,
		PlataInicial:  1000,
		TotalGastos:   500,
		MontoFinal:    5500,
		Pedidos: []models.Pedido{
			{ID: 1, Estado: constants.ESTADO_ENTREGADO},
			{ID: 2, Estado: constants.ESTADO_DEVOLUCION},
		},
	}
}

func TestConfirmarExitoso(t *testing.T) {
	ledger := nuevoLedgerFalso()
	r := NewReconciler(ledger, nil)
	liq := liqPrueba("ANA", "2026-08-29")

	if err := r.Confirmar(context.Background(), liq); err != nil {
		t.Fatalf("Confirmar devolvió error: %v", err)
	}
	if !liq.YaLiquidada {
		t.Error("la liquidación debe quedar marcada como liquidada")
	}
	if estado := r.Estado("ANA", "2026-08-29"); estado != EstadoLiquidada {
		t.Errorf("estado = %v, quiere liquidada", estado)
	}
	if !ledger.registradas["ANA|2026-08-29"] {
		t.Error("el ledger debe registrar la liquidación")
	}
}

// Dos confirmaciones del mismo día: la segunda recibe el error de duplicado
// del ledger y debe converger a liquidada sin error para el usuario.
func TestConfirmarDuplicadoEsExito(t *testing.T) {
	ledger := nuevoLedgerFalso()
	ledger.registradas["ANA|2026-08-29"] = true

	r := NewReconciler(ledger, nil)
	liq := liqPrueba("ANA", "2026-08-29")

	if err := r.Confirmar(context.Background(), liq); err != nil {
		t.Fatalf("el duplicado debe tratarse como éxito, devolvió: %v", err)
	}
	if !liq.YaLiquidada {
		t.Error("la liquidación debe quedar marcada como liquidada tras el duplicado")
	}
	if estado := r.Estado("ANA", "2026-08-29"); estado != EstadoLiquidada {
		t.Errorf("estado = %v, quiere liquidada", estado)
	}
}

func TestConfirmarRechazaPendientes(t *testing.T) {
	ledger := nuevoLedgerFalso()
	r := NewReconciler(ledger, nil)

	liq := liqPrueba("ANA", "2026-08-29")
	liq.Pedidos = append(liq.Pedidos, models.Pedido{ID: 3, Estado: constants.ESTADO_PENDIENTE})

	if err := r.Confirmar(context.Background(), liq); err == nil {
		t.Fatal("con pedidos pendientes la confirmación debe rechazarse")
	}
	// La guarda corre antes de la red: el ledger no debe haber visto nada.
	if ledger.envios != 0 {
		t.Errorf("el ledger recibió %d envíos, quiere 0", ledger.envios)
	}
}

func TestConfirmarYaConfirmadaNoReenvia(t *testing.T) {
	ledger := nuevoLedgerFalso()
	r := NewReconciler(ledger, nil)
	liq := liqPrueba("ANA", "2026-08-29")

	if err := r.Confirmar(context.Background(), liq); err != nil {
		t.Fatalf("primera confirmación falló: %v", err)
	}
	if err := r.Confirmar(context.Background(), liq); err == nil {
		t.Fatal("la segunda confirmación debe rechazarse localmente")
	}
	if ledger.envios != 1 {
		t.Errorf("el ledger recibió %d envíos, quiere 1", ledger.envios)
	}
}

func TestConfirmarErrorRegresaASinLiquidar(t *testing.T) {
	ledger := nuevoLedgerFalso()
	ledger.errAdd = errors.New("timeout del webhook")

	r := NewReconciler(ledger, nil)
	liq := liqPrueba("ANA", "2026-08-29")

	if err := r.Confirmar(context.Background(), liq); err == nil {
		t.Fatal("un fallo del ledger debe devolver error")
	}
	if liq.YaLiquidada {
		t.Error("la liquidación no debe quedar marcada tras un fallo")
	}
	if estado := r.Estado("ANA", "2026-08-29"); estado != EstadoSinLiquidar {
		t.Errorf("estado = %v, quiere sin_liquidar (listo para reintentar)", estado)
	}

	// El reintento manual funciona una vez que el ledger responde.
	ledger.errAdd = nil
	if err := r.Confirmar(context.Background(), liq); err != nil {
		t.Fatalf("el reintento debió funcionar: %v", err)
	}
}

func TestVerificarAplicaResultado(t *testing.T) {
	ledger := nuevoLedgerFalso()
	ledger.registradas["ANA|2026-08-29"] = true

	r := NewReconciler(ledger, nil)
	gen := r.IniciarCarga("ANA", "2026-08-29")

	yaLiquidada, err := r.Verificar(context.Background(), "ANA", "2026-08-29", gen)
	if err != nil {
		t.Fatalf("Verificar devolvió error: %v", err)
	}
	if !yaLiquidada {
		t.Error("el ledger la tiene registrada, quiere ya_liquidada = true")
	}
	if estado := r.Estado("ANA", "2026-08-29"); estado != EstadoLiquidada {
		t.Errorf("estado = %v, quiere liquidada", estado)
	}
}

// Una verificación que resuelve después de una recarga más nueva no debe
// aplicar su resultado.
func TestVerificarObsoletaSeDescarta(t *testing.T) {
	ledger := nuevoLedgerFalso()
	ledger.registradas["ANA|2026-08-29"] = true

	r := NewReconciler(ledger, nil)
	genVieja := r.IniciarCarga("ANA", "2026-08-29")
	r.IniciarCarga("ANA", "2026-08-29") // recarga: la generación avanza

	if _, err := r.Verificar(context.Background(), "ANA", "2026-08-29", genVieja); err != nil {
		t.Fatalf("Verificar devolvió error: %v", err)
	}
	if estado := r.Estado("ANA", "2026-08-29"); estado != EstadoDesconocido {
		t.Errorf("estado = %v, quiere desconocido (el resultado viejo se descarta)", estado)
	}
}

func TestVerificarUsaCache(t *testing.T) {
	ledger := nuevoLedgerFalso()
	cache := nuevoCacheFalso()
	cache.valores["ANA|2026-08-29"] = true

	r := NewReconciler(ledger, cache)
	gen := r.IniciarCarga("ANA", "2026-08-29")

	yaLiquidada, err := r.Verificar(context.Background(), "ANA", "2026-08-29", gen)
	if err != nil {
		t.Fatalf("Verificar devolvió error: %v", err)
	}
	if !yaLiquidada {
		t.Error("el caché la tiene registrada, quiere ya_liquidada = true")
	}
	if cache.gets != 1 {
		t.Errorf("gets al caché = %d, quiere 1", cache.gets)
	}
}

// El fallo de la verificación es consultivo: devuelve error pero el estado
// queda en desconocido y la vista puede abrir igual.
func TestVerificarFalloNoCambiaEstado(t *testing.T) {
	ledger := nuevoLedgerFalso()
	ledger.errCheck = errors.New("webhook caído")

	r := NewReconciler(ledger, nil)
	gen := r.IniciarCarga("ANA", "2026-08-29")

	if _, err := r.Verificar(context.Background(), "ANA", "2026-08-29", gen); err == nil {
		t.Fatal("el fallo del webhook debe propagarse al llamador")
	}
	if estado := r.Estado("ANA", "2026-08-29"); estado != EstadoDesconocido {
		t.Errorf("estado = %v, quiere desconocido", estado)
	}
}

// Nombres con mayúsculas y espacios distintos apuntan al mismo actor-día.
func TestReconcilerNormalizaClaves(t *testing.T) {
	ledger := nuevoLedgerFalso()
	r := NewReconciler(ledger, nil)

	liq := liqPrueba("  ana ", "2026-08-29")
	if err := r.Confirmar(context.Background(), liq); err != nil {
		t.Fatalf("Confirmar devolvió error: %v", err)
	}
	if estado := r.Estado("ANA", "2026-08-29"); estado != EstadoLiquidada {
		t.Errorf("estado bajo el nombre normalizado = %v, quiere liquidada", estado)
	}
	if !ledger.registradas["ANA|2026-08-29"] {
		t.Error("el ledger debe recibir el nombre normalizado")
	}
}
