// Package server hosts the HTTP boundary: portfolio submission, price and
// notification retrieval, and acknowledgement.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"portfolio_sentinel/internal/config"
	"portfolio_sentinel/internal/notify"
	"portfolio_sentinel/internal/store"
)

// maxBodyBytes caps inbound JSON bodies; large portfolios fit comfortably.
const maxBodyBytes = 1 << 20 // 1 MB

type Server struct {
	cfg        *config.Config
	portfolios *store.PortfolioStore
	prices     *store.PriceTracker
	queue      *notify.Queue
	log        zerolog.Logger

	httpServer *http.Server
}

func New(cfg *config.Config, portfolios *store.PortfolioStore, prices *store.PriceTracker, queue *notify.Queue, log zerolog.Logger) *Server {
	s := &Server{
		cfg:        cfg,
		portfolios: portfolios,
		prices:     prices,
		queue:      queue,
		log:        log,
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s
}

// Handler builds the full middleware-wrapped handler; exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return s.withCORS(s.withBodyLimit(mux))
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("http server listening")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
