package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/keyword-portfolio/internal/conflict"
	"github.com/jonathan/keyword-portfolio/internal/ranking"
	"github.com/jonathan/keyword-portfolio/internal/types"
)

// ScoreRequest asks for candidates to be gated and ranked for a budget.
type ScoreRequest struct {
	AuthorityBudget int                          `json:"authority_budget" validate:"gte=0,lte=100"`
	Candidates      []types.CandidateOpportunity `json:"candidates" validate:"dive"`
}

// ScoreResponse lists the affordable candidates best first.
type ScoreResponse struct {
	Threshold float64                      `json:"threshold"`
	Ranked    []types.CandidateOpportunity `json:"ranked"`
	Rejected  int                          `json:"rejected"`
}

// AdjudicateResponse is a verdict plus the rules that would publish it.
type AdjudicateResponse struct {
	Verdict *types.Verdict `json:"verdict"`
	Rules   []string       `json:"htaccess_rules"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validator.New().Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	params := s.tuning.Scoring
	ranked := ranking.GateAndRank(req.Candidates, req.AuthorityBudget, params)
	s.jsonResponse(w, http.StatusOK, ScoreResponse{
		Threshold: ranking.Threshold(req.AuthorityBudget, params),
		Ranked:    ranked,
		Rejected:  len(req.Candidates) - len(ranked),
	})
}

func (s *Server) handleAdjudicate(w http.ResponseWriter, r *http.Request) {
	var group types.ConflictGroup
	if err := json.NewDecoder(r.Body).Decode(&group); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	verdict, err := conflict.Adjudicate(group, s.tuning.ConflictWeights)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	rules := make([]string, 0, len(verdict.Directives))
	for _, d := range verdict.Directives {
		rule, err := conflict.HtaccessRule(d)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		rules = append(rules, rule)
	}
	s.jsonResponse(w, http.StatusOK, AdjudicateResponse{Verdict: verdict, Rules: rules})
}
