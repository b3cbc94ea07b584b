// internal/server/server.go
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"biteiq-bot/pkg/logger"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers are the externally called endpoints mounted next to the status routes.
type Handlers struct {
	Telegram http.Handler
	Stripe   http.Handler
	DB       Pinger
}

type Server struct {
	server *http.Server
	logger *logger.Logger
}

func NewServer(port string, h Handlers, l *logger.Logger) *Server {
	l = l.Named("http")

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      withMiddleware(Routes(h, l), l),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		server: httpServer,
		logger: l,
	}
}

// Routes builds the mux without middleware.
func Routes(h Handlers, l *logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", handleRoot)
	mux.HandleFunc("GET /health", handleHealth(h.DB, l))
	if h.Telegram != nil {
		mux.Handle("POST /webhook", h.Telegram)
	}
	if h.Stripe != nil {
		mux.Handle("POST /stripe-webhook", h.Stripe)
	}
	mux.HandleFunc("GET /payment-success", handlePaymentPage(successPage))
	mux.HandleFunc("GET /payment-cancelled", handlePaymentPage(cancelledPage))

	return mux
}

func (s *Server) Start() error {
	s.logger.Infow("Starting HTTP server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Infow("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}
