package server

import (
	"net/http"
	"time"

	"provl/internal/api"
	"provl/internal/models"
)

func actorResponse(actor *models.Actor) api.ActorResponse {
	return api.ActorResponse{
		ActorID:   actor.ActorID,
		Name:      actor.Name,
		PublicKey: actor.PublicKey,
		CreatedAt: actor.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (s *Server) handleCreateActor(w http.ResponseWriter, r *http.Request) {
	var req api.ActorCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	result, err := s.svc.CreateActor(r.Context(), req.ActorID, req.Name, req.PublicKey)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := actorResponse(result.Actor)
	if result.DerivedKeypair != nil {
		resp.PrivateKey = result.DerivedKeypair.PrivateKey
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListActors(w http.ResponseWriter, r *http.Request) {
	actors, err := s.svc.ListActors(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	resp := make([]api.ActorResponse, 0, len(actors))
	for i := range actors {
		resp = append(resp, actorResponse(&actors[i]))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetActor(w http.ResponseWriter, r *http.Request) {
	actor, err := s.svc.GetActor(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, actorResponse(actor))
}

func (s *Server) handleKeygen(w http.ResponseWriter, r *http.Request) {
	kp, err := s.svc.GenerateKeypair()
	if err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.KeypairResponse{
		PublicKey:  kp.PublicKey,
		PrivateKey: kp.PrivateKey,
	})
}
