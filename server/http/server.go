package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/w-h-a/shopchat/internal/observability"
)

type Server struct {
	options Options
	server  *http.Server
}

func (s *Server) Start() error {
	slog.InfoContext(context.Background(), "http server listening", "address", s.options.Address)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func NewServer(handler *Handler, opts ...Option) *Server {
	options := NewOptions(opts...)

	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/query", handler.Query).Methods(http.MethodPost)
	api.HandleFunc("/catalog", handler.Catalog).Methods(http.MethodPost)

	router.HandleFunc("/health", handler.Health).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)

	return &Server{
		options: options,
		server: &http.Server{
			Addr:              options.Address,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}
