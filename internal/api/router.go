package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"magicstars/internal/config"
	"magicstars/internal/constants"
	"magicstars/internal/liquidacion"
	"magicstars/internal/notify"
	"magicstars/internal/webhooks"
)

// ApiDependencies contiene las dependencias de los handlers del API.
type ApiDependencies struct {
	Config     *config.Config
	Webhooks   *webhooks.Client
	Reconciler *liquidacion.Reconciler
	Notifier   *notify.Notifier
}

var depsContextKey = &contextKey{"ApiDependencies"}

// depsDesdeContexto recupera las dependencias que SetupRoutes dejó en el
// contexto de la petición.
func depsDesdeContexto(r *http.Request) ApiDependencies {
	deps, _ := r.Context().Value(depsContextKey).(ApiDependencies)
	return deps
}

// SetupRoutes configura todas las rutas del API.
func SetupRoutes(r *chi.Mux, deps ApiDependencies) {
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), depsContextKey, deps)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})

	// Pública con validación interna del nombre de archivo: los comprobantes
	// se enlazan desde los reportes.
	r.Get("/api/media/{filename}", ServeMediaHandler)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(deps.Config.AuthSecret))

		r.Post("/api/upload-media", UploadMediaHandler)

		// --- Rutas del mensajero (y del admin sobre sí mismo) ---
		r.Get("/api/mensajero/pedidos", GetMisPedidos)
		r.Get("/api/mensajero/liquidacion", GetMiLiquidacion)
		r.Get("/api/pedido/{id}", GetPedidoDetails)
		r.Post("/api/pedido/{id}/actualizar", ActualizarPedidoHandler)
		r.Get("/api/gastos", GetGastos)
		r.Post("/api/gastos", AddGastoHandler)

		// --- Rutas de administración ---
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(RoleMiddleware(constants.ROLE_ADMIN))

			r.Get("/resumen", GetResumen)
			r.Get("/mensajeros", GetMensajerosHandler)

			r.Get("/pedidos", GetPedidos)
			r.Get("/pedidos/sin-asignar", GetPedidosSinAsignar)
			r.Get("/pedido/{id}/qr", GetPedidoQR)

			r.Get("/liquidaciones", GetLiquidaciones)
			r.Get("/liquidaciones/tiendas", GetTiendasLiquidaciones)
			r.Get("/liquidaciones/vencidas", GetLiquidacionesVencidas)
			r.Post("/liquidaciones/confirmar", ConfirmarLiquidacion)
			r.Get("/liquidaciones/excel", ExportLiquidacionesExcel)
			r.Get("/liquidaciones/tiendas/excel", ExportTiendasExcel)

			r.Post("/rutas/generar", GenerarRutasHandler)
			r.Post("/rutas/reasignar", ReasignarRutaHandler)
		})
	})
}
