package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/clearpathfinancial/clearpath-api/internal/api/handlers"
	appMiddleware "github.com/clearpathfinancial/clearpath-api/internal/api/middlewares"
	"github.com/clearpathfinancial/clearpath-api/internal/config"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, chatH *handlers.ChatHandler, docH *handlers.DocumentHandler, adminH *handlers.AdminHandler, authH *handlers.AuthHandler) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://clearpathfinancial.com", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// widget-facing endpoints
		api.Post("/chat/messages", chatH.PostMessage)
		api.Get("/chat/messages", chatH.GetMessages)
		api.Post("/chat/escalate", chatH.ConfirmEscalation)
		api.Post("/documents", docH.Upload)
		api.Get("/documents/{id}/report", docH.GetReport)

		// staff endpoints
		api.Post("/admin/login", authH.Login)
		api.Group(func(admin chi.Router) {
			admin.Use(appMiddleware.AdminJWT(cfg.JWTSecret))
			admin.Get("/admin/messages", adminH.ListMessages)
			admin.Post("/admin/messages", adminH.PostMessage)
			admin.Get("/admin/documents", adminH.ListDocuments)
			admin.Delete("/admin/documents/{id}", adminH.DeleteDocument)
			admin.Delete("/admin/conversations/{email}", adminH.ClearConversation)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server until shutdown.
func (s *Server) Start() error {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
