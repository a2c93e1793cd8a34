package routes

import (
	"chiller-selector/internal/auth"
	"chiller-selector/internal/config"
	"chiller-selector/internal/handlers"
	"chiller-selector/internal/logger"
	mdlwr "chiller-selector/internal/middleware"
	"chiller-selector/internal/observability"
	"chiller-selector/internal/parser"
	"chiller-selector/internal/services"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"

	"github.com/go-chi/cors"
)

func NewRouter(db *bun.DB, history services.HistoryStore, cfg *config.Config, logr *logger.Logger) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// CORS middleware with config
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	store := services.NewChillerStore(db)
	selectorSvc := services.NewSelectorService(store, cfg.Selector.ToleranceLevels, logr.Logger)
	historySvc := services.NewHistoryService(history, cfg.HistorySize)
	importSvc := services.NewImportService(store, cfg.Selector.ImportBatchSize, logr.Logger)

	chillerHandler := handlers.NewChillerHandler(store, selectorSvc, historySvc, logr.Logger)
	importHandler := handlers.NewImportHandler(parser.NewParser(logr.Logger), importSvc, cfg, logr.Logger)
	folderHandler := handlers.NewFolderHandler(store, logr.Logger)

	// write routes pass through requireAdmin; without AUTH_ENABLED it is a no-op
	requireAdmin := func(next http.Handler) http.Handler { return next }
	if cfg.AuthEnabled {
		// the server only verifies, so the private key is not loaded
		jwtMgr, err := auth.NewJWTManager("", cfg.JWTPublicKeyPath, auth.DefaultIssuer)
		if err != nil {
			logr.Fatal("failed to init jwt manager", zap.Error(err))
		}
		authMW := mdlwr.NewAuthMiddleware(jwtMgr, logr.Logger)
		requireAdmin = func(next http.Handler) http.Handler {
			return authMW.JWTAuth(authMW.RequireRole(auth.RoleAdmin)(next))
		}
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("ok"))
		if err != nil {
			return
		}
	})
	r.Handle("/metrics", observability.Handler())

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/chillers", func(r chi.Router) {
			r.Get("/", chillerHandler.List)
			r.Get("/search", chillerHandler.Search)
			r.Get("/search/export", chillerHandler.ExportSearch)
			r.Get("/history", chillerHandler.History)
			r.Get("/ambients", chillerHandler.Ambients)
			r.Get("/stats", chillerHandler.Stats)
			r.Get("/{id}", chillerHandler.GetByID)

			r.With(requireAdmin).Delete("/{id}", chillerHandler.Delete)
		})

		r.Route("/import", func(r chi.Router) {
			r.Post("/parse", importHandler.Parse)
			r.With(requireAdmin).Post("/", importHandler.Import)
		})

		r.Route("/folders", func(r chi.Router) {
			r.Get("/", folderHandler.List)
			r.Get("/chillers", folderHandler.Chillers)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Put("/rename", folderHandler.Rename)
				r.Delete("/", folderHandler.Delete)
			})
		})

	})

	return r
}
