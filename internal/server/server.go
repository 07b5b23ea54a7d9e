package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Miro-wq/phonebook-api/internal/handler"
	"github.com/Miro-wq/phonebook-api/internal/middleware"
)

// Server wraps the HTTP server and its router.
type Server struct {
	httpServer *http.Server
	logger     *zerolog.Logger
}

// Options bundles everything the router needs.
type Options struct {
	Addr           string
	ContactHandler *handler.ContactHandler
	UserHandler    *handler.UserHandler
	AuthGate       func(http.Handler) http.Handler
	AvatarDir      string
	Logger         *zerolog.Logger
}

// New builds the router and the HTTP server around it.
func New(opts Options) *Server {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(chimiddleware.Recoverer)

	r.Route("/contacts", opts.ContactHandler.RegisterRoutes)
	r.Route("/users", func(r chi.Router) {
		opts.UserHandler.RegisterRoutes(r, opts.AuthGate)
	})

	// Processed avatars are served statically so stored avatar URLs resolve.
	fileServer := http.StripPrefix("/avatars/", http.FileServer(http.Dir(opts.AvatarDir)))
	r.Get("/avatars/*", fileServer.ServeHTTP)

	return &Server{
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: opts.Logger,
	}
}

// Start serves until the listener fails or the server is shut down.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
