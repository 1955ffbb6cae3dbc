package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/keyword-portfolio/internal/server/middleware"
	"github.com/jonathan/keyword-portfolio/internal/types"
)

// PortfolioResponse is the portfolio view returned by the API.
type PortfolioResponse struct {
	ProjectID uuid.UUID             `json:"project_id"`
	Version   int64                 `json:"version"`
	Capacity  int                   `json:"capacity,omitempty"`
	Active    []types.ActiveKeyword `json:"active"`
	Paused    []types.ActiveKeyword `json:"paused"`
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req types.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := s.store.CreateProject(r.Context(), &req)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	subject, _ := middleware.GetSubject(r)
	s.logger.Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.String("domain", project.Domain),
		zap.String("by", subject))
	s.jsonResponse(w, http.StatusCreated, project)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := s.projectID(w, r)
	if !ok {
		return
	}
	project, err := s.store.GetProject(r.Context(), id)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, project)
}

func (s *Server) handleUpdateAuthority(w http.ResponseWriter, r *http.Request) {
	id, ok := s.projectID(w, r)
	if !ok {
		return
	}
	var req types.UpdateAuthorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.UpdateAuthorityBudget(r.Context(), id, req.AuthorityBudget); err != nil {
		s.errorFrom(w, err)
		return
	}
	project, err := s.store.GetProject(r.Context(), id)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, project)
}

func (s *Server) handleDeactivateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := s.projectID(w, r)
	if !ok {
		return
	}
	if err := s.store.SetProjectActive(r.Context(), id, false); err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	id, ok := s.projectID(w, r)
	if !ok {
		return
	}
	if _, err := s.store.GetProject(r.Context(), id); err != nil {
		s.errorFrom(w, err)
		return
	}
	portfolio, err := s.store.LoadPortfolio(r.Context(), id)
	if err != nil {
		s.errorFrom(w, err)
		return
	}

	resp := PortfolioResponse{
		ProjectID: id,
		Version:   portfolio.Version,
		Capacity:  s.capacity,
		Active:    portfolio.Active(),
		Paused:    []types.ActiveKeyword{},
	}
	for _, m := range portfolio.Members {
		if !m.IsActive() {
			resp.Paused = append(resp.Paused, m)
		}
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleListCycles(w http.ResponseWriter, r *http.Request) {
	id, ok := s.projectID(w, r)
	if !ok {
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}
	runs, err := s.store.ListCycles(r.Context(), id, limit)
	if err != nil {
		s.errorFrom(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"cycles": runs})
}
