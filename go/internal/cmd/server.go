package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/livedraft/go/internal/draft/gateway"
)

func setupServer(cfg *Config, services *Services) *http.Server {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedHeaders: []string{"*"},
	})

	registerDraftRoutes(mux, cfg, services)
	setupHealthCheck(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	handler := c.Handler(mux)

	// Setup HTTP/2 server
	return &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}
}

func registerDraftRoutes(mux *http.ServeMux, cfg *Config, services *Services) {
	// Websocket observers: /ws/draft, /ws/stats
	gateway.NewWebSocketHandler(services.Connections).RegisterRoutes(mux)

	// REST state and commands: /api/drafts/...
	gateway.NewStateHandler(services.Orchestrator, cfg.Draft.CommandTimeout).RegisterStateRoutes(mux)
}

func setupHealthCheck(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}
