package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Answering
	mux.HandleFunc("/api/answer", s.app.AnswerHandler.AnswerQuestionHandler) // POST - ask a question
	mux.HandleFunc("/api/models", s.app.ModelsHandler.ListModelsHandler)     // GET - supported models

	// API routes - Index management
	mux.HandleFunc("/api/index/rebuild", s.app.IndexHandler.RebuildIndexHandler) // POST - start background build
	mux.HandleFunc("/api/index/status", s.app.IndexHandler.IndexStatusHandler)   // GET - snapshot and build state

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
