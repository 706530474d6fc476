package server

import (
	"fmt"
	"net/http"

	"provl/internal/api"
)

func (s *Server) handleAnchor(w http.ResponseWriter, r *http.Request) {
	if !s.requireOperator(w, r) {
		return
	}

	result, err := s.svc.Anchor(r.Context())
	if err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError,
			makeAPIError(http.StatusInternalServerError, "internal", ErrCodeAnchorFailed, err))
		return
	}

	s.writeJSON(w, http.StatusOK, api.AnchorResponse{
		Anchored: result.Anchored,
		Batch:    result.Batch,
	})
}

func (s *Server) handleListAnchors(w http.ResponseWriter, r *http.Request) {
	batches, err := s.svc.ListBatches(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, batches)
}

func (s *Server) handleGetAnchor(w http.ResponseWriter, r *http.Request) {
	batchID := r.PathValue("id")

	batch, err := s.svc.GetBatch(r.Context(), batchID)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if batch == nil {
		s.writeErrorReq(w, r, http.StatusNotFound,
			notFoundCode(fmt.Errorf("unknown batch: %s", batchID), ErrCodeBatchNotFound))
		return
	}
	s.writeJSON(w, http.StatusOK, batch)
}

func (s *Server) handleProof(w http.ResponseWriter, r *http.Request) {
	eventHash := r.PathValue("hash")

	proof, err := s.svc.GetProof(r.Context(), eventHash)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if proof == nil {
		s.writeErrorReq(w, r, http.StatusNotFound,
			notFoundCode(fmt.Errorf("no inclusion proof for event %s", eventHash), ErrCodeProofNotFound))
		return
	}
	s.writeJSON(w, http.StatusOK, proof)
}
