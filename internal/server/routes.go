package server

import "net/http"

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.HandleFunc("POST /update-portfolio", s.handleUpdatePortfolio)
	mux.HandleFunc("GET /prices/{userId}", s.handlePrices)

	mux.HandleFunc("GET /notifications/{userId}", s.handleNotifications)
	mux.HandleFunc("POST /notifications/{userId}/{notificationId}/read", s.handleAcknowledge)
}
