package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"provl/internal/api"
	"provl/internal/models"
	"provl/internal/provenance"
)

// parseUpload reads the "file" part of a multipart upload, bounded by the
// configured upload limit. The multipart form stays parsed so callers can
// read the remaining text fields afterwards.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	if err := r.ParseMultipartForm(s.multipartMaxMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.writeErrorReq(w, r, http.StatusBadRequest,
				badRequestCode(fmt.Errorf("upload exceeds %d bytes", s.maxUploadBytes), ErrCodeRequestTooLarge))
			return nil, false
		}
		s.writeErrorReq(w, r, http.StatusBadRequest,
			badRequest(fmt.Errorf("parse multipart form: %w", err)))
		return nil, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest,
			badRequestCode(fmt.Errorf("multipart field %q is required", "file"), ErrCodeMissingRequired))
		return nil, false
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.writeErrorReq(w, r, http.StatusBadRequest,
				badRequestCode(fmt.Errorf("upload exceeds %d bytes", s.maxUploadBytes), ErrCodeRequestTooLarge))
			return nil, false
		}
		s.writeErrorReq(w, r, http.StatusInternalServerError, fmt.Errorf("read upload: %w", err))
		return nil, false
	}
	return content, true
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	s.withLimiter(w, r, s.ingestLimiter, "ingest", func() {
		content, ok := s.parseUpload(w, r)
		if !ok {
			return
		}

		var metadata map[string]any
		if raw := strings.TrimSpace(r.FormValue("metadata")); raw != "" {
			if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
				s.writeErrorReq(w, r, http.StatusBadRequest,
					badRequestCode(fmt.Errorf("metadata must be a JSON object: %w", err), ErrCodeInvalidMetadata))
				return
			}
		}

		result, err := s.svc.Ingest(r.Context(), provenance.IngestRequest{
			Content:    content,
			Metadata:   metadata,
			ActorID:    r.FormValue("actor_id"),
			PrivateKey: r.FormValue("private_key"),
		})
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}

		s.writeJSON(w, http.StatusCreated, api.IngestResponse{
			ObjectID:         result.ObjectID,
			CID:              result.CID,
			GenesisEventHash: result.GenesisEventHash,
			SizeBytes:        result.SizeBytes,
		})
	})
}

func (s *Server) handleAppendEvent(w http.ResponseWriter, r *http.Request) {
	objectID := r.PathValue("id")

	var req api.EventAppendRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	eventType, err := models.ParseEventType(req.EventType)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(err, ErrCodeInvalidEventType))
		return
	}

	event, err := s.svc.AppendEvent(r.Context(), provenance.AppendRequest{
		ObjectID:   objectID,
		EventType:  eventType,
		Payload:    req.Payload,
		ActorID:    req.ActorID,
		PrivateKey: req.PrivateKey,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, api.EventResponse{
		EventHash:     event.EventHash,
		PrevEventHash: event.PrevEventHash,
	})
}

func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	objectID := r.PathValue("id")

	obj, err := s.svc.GetObject(r.Context(), objectID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	events, err := s.svc.GetChain(r.Context(), objectID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.ChainResponse{
		ObjectID: obj.ObjectID,
		CID:      obj.CID,
		Events:   events,
	})
}

func (s *Server) handleExportJSONLD(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.ExportJSONLD(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/ld+json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		s.log().Error("write json-ld response", "error", err)
	}
}
