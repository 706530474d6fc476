package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check and info.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/info", s.handleInfo)

	// Actor registry.
	mux.HandleFunc("POST /v1/actors", s.handleCreateActor)
	mux.HandleFunc("GET /v1/actors", s.handleListActors)
	mux.HandleFunc("POST /v1/actors/keygen", s.handleKeygen)
	mux.HandleFunc("GET /v1/actors/{id}", s.handleGetActor)

	// Objects and event chains.
	mux.HandleFunc("POST /v1/ingest", s.handleIngest)
	mux.HandleFunc("POST /v1/objects/{id}/events", s.handleAppendEvent)
	mux.HandleFunc("GET /v1/objects/{id}/chain", s.handleChain)
	mux.HandleFunc("GET /v1/objects/{id}/export", s.handleExportJSONLD)

	// Anchoring.
	mux.HandleFunc("POST /v1/anchor", s.handleAnchor)
	mux.HandleFunc("GET /v1/anchors", s.handleListAnchors)
	mux.HandleFunc("GET /v1/anchors/{id}", s.handleGetAnchor)
	mux.HandleFunc("GET /v1/events/{hash}/proof", s.handleProof)

	// Verification.
	mux.HandleFunc("POST /v1/verify", s.handleVerify)

	return s.withRequestLogging(s.withAuth(mux))
}
