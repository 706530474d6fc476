package server

import (
	"net/http"
)

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	s.withLimiter(w, r, s.verifyLimiter, "verify", func() {
		content, ok := s.parseUpload(w, r)
		if !ok {
			return
		}

		report, err := s.svc.Verify(r.Context(), content, r.FormValue("object_id"))
		if err != nil {
			s.writeErrorReq(w, r, http.StatusInternalServerError, err)
			return
		}
		s.writeJSON(w, http.StatusOK, report)
	})
}
