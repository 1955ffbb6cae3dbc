package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/keyword-portfolio/internal/server/middleware"
	"github.com/jonathan/keyword-portfolio/internal/types"
)

// CycleResponse wraps the result of a triggered cycle.
type CycleResponse struct {
	Kind   types.CycleKind `json:"kind"`
	Result any             `json:"result"`
}

func (s *Server) handleTriggerCycle(w http.ResponseWriter, r *http.Request) {
	id, ok := s.projectID(w, r)
	if !ok {
		return
	}
	kind, ok := types.ParseCycleKind(r.PathValue("kind"))
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "Unknown cycle kind")
		return
	}
	if s.engine == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Cycle engine is not configured")
		return
	}

	subject, _ := middleware.GetSubject(r)
	s.logger.Info("cycle triggered",
		zap.String("project_id", id.String()),
		zap.String("kind", string(kind)),
		zap.String("by", subject))

	result, err := s.engine.RunCycle(r.Context(), id, kind)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, CycleResponse{Kind: kind, Result: result})
}
