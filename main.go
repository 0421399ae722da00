package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"magicstars/internal/api"
	"magicstars/internal/cache"
	"magicstars/internal/config"
	"magicstars/internal/db"
	"magicstars/internal/liquidacion"
	"magicstars/internal/notify"
	"magicstars/internal/webhooks"
)

func main() {
	// --- Bloque de inicialización ---
	err := godotenv.Load()
	if err != nil {
		log.Println("Advertencia: no se pudo cargar el archivo .env. Las variables de entorno deben estar definidas de otra forma.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error crítico: no se pudo cargar la configuración: %v", err)
	}

	if err := db.InitDB(); err != nil {
		log.Fatalf("Error crítico: no se pudo inicializar la base de datos: %v", err)
	}
	defer db.CloseDB()

	// El caché de verificación es opcional: sin Redis cada carga consulta el
	// webhook directamente.
	var verificacionCache *cache.Client
	if cfg.RedisURL != "" {
		verificacionCache, err = cache.Initialize(cfg.RedisURL)
		if err != nil {
			log.Printf("Advertencia: no se pudo conectar con Redis: %v. Se continúa sin caché.", err)
			verificacionCache = nil
		} else {
			defer verificacionCache.Close()
		}
	}

	// Las notificaciones de contabilidad también son opcionales.
	notifier, err := notify.InitNotifier(cfg.TelegramToken, cfg.ContabilidadChatID, cfg.AppEnv == "dev")
	if err != nil {
		log.Printf("Advertencia: sin notificaciones de Telegram: %v", err)
		notifier = nil
	}

	webhookClient := webhooks.NewClient(cfg.WebhookBaseURL)
	reconciler := liquidacion.NewReconciler(webhookClient, verificacionCache)

	// --- Configuración del router y middlewares ---
	apiRouter := chi.NewRouter()

	// Los middlewares globales van antes de api.SetupRoutes.
	apiRouter.Use(middleware.Logger)
	apiRouter.Use(middleware.Recoverer)
	apiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Dashboard-Auth"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	apiDeps := api.ApiDependencies{
		Config:     cfg,
		Webhooks:   webhookClient,
		Reconciler: reconciler,
		Notifier:   notifier,
	}
	api.SetupRoutes(apiRouter, apiDeps)

	// Respuesta vacía al favicon para no ensuciar los logs con 404.
	apiRouter.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	log.Printf("Iniciando el servidor HTTP del dashboard en el puerto %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, apiRouter); err != nil {
		log.Fatalf("ERROR CRÍTICO: no se pudo iniciar el servidor HTTP: %v", err)
	}
}
