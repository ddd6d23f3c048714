package service

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/Bessima/botform-intake/internal/config"
	"github.com/Bessima/botform-intake/internal/config/db"
	"github.com/Bessima/botform-intake/internal/handlers"
	middleware "github.com/Bessima/botform-intake/internal/middlewares"
	"github.com/Bessima/botform-intake/internal/middlewares/logger"
	"github.com/Bessima/botform-intake/internal/refcode"
	"github.com/Bessima/botform-intake/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerService struct {
	Server *http.Server
	db     *db.DB
}

func NewServerService(rootContext context.Context, address string, db *db.DB) ServerService {
	server := &http.Server{
		Addr:              address,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return rootContext
		},
	}
	return ServerService{Server: server, db: db}
}

func (serverService *ServerService) SetRouter(conf *config.Config) {
	submissionRepository := repository.NewSubmissionRepository(serverService.db)
	submissionService := NewSubmissionService(
		submissionRepository,
		refcode.NewGenerator(),
		conf.ReferenceCodeAttempts,
		conf.StrictStatus,
	)

	serverService.Server.Handler = NewRouter(submissionService, serverService.db)
}

func NewRouter(submissionService handlers.SubmissionServiceI, pinger handlers.Pinger) chi.Router {
	router := chi.NewRouter()

	router.Use(logger.RequestLogger)
	router.Use(middleware.Metrics)

	router.Get("/health", handlers.NewHealthHandler(pinger).Ready)
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	submissionsHandler := handlers.NewSubmissionsHandler(submissionService)
	router.Route("/api", func(r chi.Router) {
		r.Get("/options", handlers.Options)

		r.Route("/submissions", func(r chi.Router) {
			r.Get("/", submissionsHandler.List)
			r.Post("/", submissionsHandler.Create)
			r.Get("/schema", submissionsHandler.Schema)
			r.Post("/validate", submissionsHandler.Validate)
			r.Get("/reference/{code}", submissionsHandler.GetByReference)
			r.Get("/{id}", submissionsHandler.Get)
			r.Patch("/{id}/status", submissionsHandler.UpdateStatus)
		})
	})

	return router
}

func (serverService *ServerService) RunServer(serverErr *chan error) {
	if err := serverService.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		*serverErr <- err
	} else {
		*serverErr <- nil
	}
}

func (serverService *ServerService) Shutdown() error {
	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if shutdownErr := serverService.Server.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	return nil
}
