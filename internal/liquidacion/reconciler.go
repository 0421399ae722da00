// Archivo: internal/liquidacion/reconciler.go
//
// Reconciliación de liquidaciones contra el ledger externo: decide si el día
// de un actor está liquidado y envía la confirmación al webhook.
package liquidacion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"magicstars/internal/constants"
	"magicstars/internal/models"
	"magicstars/internal/webhooks"
)

// Estado de la liquidación de un actor-día dentro de la sesión.
type Estado int

const (
	EstadoDesconocido Estado = iota // recién agregada, verificación en curso
	EstadoSinLiquidar               // verificada: el ledger no la registra
	EstadoEnviando                  // confirmación en vuelo
	EstadoLiquidada                 // terminal en esta sesión
)

func (e Estado) String() string {
	switch e {
	case EstadoSinLiquidar:
		return "sin_liquidar"
	case EstadoEnviando:
		return "enviando"
	case EstadoLiquidada:
		return "liquidada"
	default:
		return "desconocido"
	}
}

// Ledger es la parte del cliente de webhooks que usa el reconciliador.
type Ledger interface {
	CheckLiquidacion(ctx context.Context, mensajero, fecha string) (bool, error)
	AddLiquidacion(ctx context.Context, liq webhooks.AddLiquidacionRequest) error
}

// VerificacionCache es un caché opcional de resultados de CheckLiquidacion.
type VerificacionCache interface {
	GetVerificacion(ctx context.Context, mensajero, fecha string) (yaLiquidada, encontrada bool)
	SetVerificacion(ctx context.Context, mensajero, fecha string, yaLiquidada bool)
}

type actorDia struct {
	estado     Estado
	generacion uint64
}

// Reconciler mantiene el estado por actor-día y habla con el ledger.
//
// Cada recarga de la vista incrementa la generación del actor-día; una
// verificación consultiva que resuelve tarde solo aplica su resultado si la
// generación no cambió, así un resultado obsoleto nunca pisa datos frescos.
type Reconciler struct {
	mu      sync.RWMutex
	estados map[string]*actorDia

	ledger Ledger
	cache  VerificacionCache // puede ser nil
}

// NewReconciler crea el reconciliador. cache puede ser nil.
func NewReconciler(ledger Ledger, cache VerificacionCache) *Reconciler {
	return &Reconciler{
		estados: make(map[string]*actorDia),
		ledger:  ledger,
		cache:   cache,
	}
}

func clave(mensajero, fecha string) string {
	return NormalizarActor(mensajero) + "|" + fecha
}

// Estado devuelve el estado actual del actor-día.
func (r *Reconciler) Estado(mensajero, fecha string) Estado {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ad, ok := r.estados[clave(mensajero, fecha)]; ok {
		return ad.estado
	}
	return EstadoDesconocido
}

// IniciarCarga marca una recarga de la vista del actor-día: resetea el estado
// a desconocido (salvo liquidada, que es terminal en la sesión) e incrementa
// la generación. Devuelve la generación vigente para Verificar.
func (r *Reconciler) IniciarCarga(mensajero, fecha string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := clave(mensajero, fecha)
	ad, ok := r.estados[k]
	if !ok {
		ad = &actorDia{}
		r.estados[k] = ad
	}
	ad.generacion++
	if ad.estado != EstadoLiquidada {
		ad.estado = EstadoDesconocido
	}
	return ad.generacion
}

// Verificar ejecuta la consulta consultiva de estado liquidado. La vista abre
// de forma optimista antes de que resuelva; al resolver, el resultado se
// aplica solo si la generación sigue vigente.
func (r *Reconciler) Verificar(ctx context.Context, mensajero, fecha string, generacion uint64) (bool, error) {
	actor := NormalizarActor(mensajero)

	if r.cache != nil {
		if yaLiquidada, encontrada := r.cache.GetVerificacion(ctx, actor, fecha); encontrada {
			r.aplicarVerificacion(actor, fecha, generacion, yaLiquidada)
			return yaLiquidada, nil
		}
	}

	yaLiquidada, err := r.ledger.CheckLiquidacion(ctx, actor, fecha)
	if err != nil {
		log.Printf("Reconciler.Verificar: fallo la verificación de '%s' (%s): %v", actor, fecha, err)
		return false, err
	}

	if r.cache != nil {
		r.cache.SetVerificacion(ctx, actor, fecha, yaLiquidada)
	}
	r.aplicarVerificacion(actor, fecha, generacion, yaLiquidada)
	return yaLiquidada, nil
}

func (r *Reconciler) aplicarVerificacion(actor, fecha string, generacion uint64, yaLiquidada bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ad, ok := r.estados[clave(actor, fecha)]
	if !ok || ad.generacion != generacion {
		// Resultado obsoleto: llegó después de una recarga más nueva.
		log.Printf("Reconciler: verificación obsoleta descartada para '%s' (%s).", actor, fecha)
		return
	}
	if ad.estado == EstadoLiquidada || ad.estado == EstadoEnviando {
		return
	}
	if yaLiquidada {
		ad.estado = EstadoLiquidada
	} else {
		ad.estado = EstadoSinLiquidar
	}
}

// PuedeConfirmar aplica la guarda previa al envío: sin pedidos pendientes y
// sin liquidación previa. Se valida aquí, antes de cualquier llamada de red.
func (r *Reconciler) PuedeConfirmar(liq *models.Liquidacion) error {
	if r.Estado(liq.Mensajero, liq.Fecha) == EstadoLiquidada || liq.YaLiquidada {
		return fmt.Errorf("la liquidación de '%s' (%s) ya fue confirmada", liq.Mensajero, liq.Fecha)
	}
	if liq.TienePendientes() {
		return fmt.Errorf("'%s' aún tiene pedidos pendientes el %s; no se puede liquidar", liq.Mensajero, liq.Fecha)
	}
	return nil
}

// Confirmar envía la liquidación al ledger y hace converger el estado local.
//
// Si el ledger reporta clave duplicada (otro proceso liquidó primero) el
// resultado es éxito-ya-liquidada: estado local Liquidada y sin error para el
// usuario. Cualquier otro fallo regresa el actor-día a sin_liquidar y se
// devuelve el error.
func (r *Reconciler) Confirmar(ctx context.Context, liq *models.Liquidacion) error {
	if err := r.PuedeConfirmar(liq); err != nil {
		return err
	}

	actor := NormalizarActor(liq.Mensajero)
	r.setEstado(actor, liq.Fecha, EstadoEnviando)

	entregados := 0
	for i := range liq.Pedidos {
		if liq.Pedidos[i].Estado == constants.ESTADO_ENTREGADO {
			entregados++
		}
	}

	req := webhooks.AddLiquidacionRequest{
		Mensajero:         actor,
		Fecha:             liq.Fecha,
		PlataInicial:      liq.PlataInicial,
		TotalRecaudado:    liq.TotalRecaudado,
		TotalGastos:       liq.TotalGastos,
		MontoFinal:        liq.MontoFinal,
		PedidosEntregados: entregados,
		PedidosTotal:      len(liq.Pedidos),
		PagosEfectivo:     liq.PagosEfectivo,
		PagosSinpe:        liq.PagosSinpe,
		PagosTarjeta:      liq.PagosTarjeta,
	}

	err := r.ledger.AddLiquidacion(ctx, req)
	switch {
	case err == nil:
		r.setEstado(actor, liq.Fecha, EstadoLiquidada)
		liq.YaLiquidada = true
		if r.cache != nil {
			r.cache.SetVerificacion(ctx, actor, liq.Fecha, true)
		}
		return nil
	case errors.Is(err, webhooks.ErrYaLiquidada):
		// Idempotencia observada a través del error de unicidad: converger.
		r.setEstado(actor, liq.Fecha, EstadoLiquidada)
		liq.YaLiquidada = true
		if r.cache != nil {
			r.cache.SetVerificacion(ctx, actor, liq.Fecha, true)
		}
		return nil
	default:
		r.setEstado(actor, liq.Fecha, EstadoSinLiquidar)
		return err
	}
}

func (r *Reconciler) setEstado(actor, fecha string, estado Estado) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := clave(actor, fecha)
	ad, ok := r.estados[k]
	if !ok {
		ad = &actorDia{}
		r.estados[k] = ad
	}
	ad.estado = estado
}
