package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/keyword-portfolio/internal/db"
	"github.com/jonathan/keyword-portfolio/internal/types"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ErrValidation{Field: "id", Message: "bad"}, http.StatusBadRequest},
		{"not found", fmt.Errorf("load: %w", db.ErrProjectNotFound), http.StatusNotFound},
		{"duplicate", db.ErrDuplicateProject, http.StatusConflict},
		{"inactive", fmt.Errorf("project x: %w", db.ErrProjectInactive), http.StatusConflict},
		{"concurrent change", &types.PersistenceConflictError{ProjectID: "p"}, http.StatusConflict},
		{"upstream", &types.UpstreamFetchError{Source: "candidates", Message: "down"}, http.StatusBadGateway},
		{"timeout", fmt.Errorf("cycle: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"cycle timeout over upstream", &types.CycleTimeoutError{
			Kind: types.CycleSwap, Timeout: "2m0s",
			Cause: &types.UpstreamFetchError{Source: "candidates", Message: "slow", Cause: context.DeadlineExceeded},
		}, http.StatusGatewayTimeout},
		{"invariant", &types.InvariantViolation{ProjectID: "p", Rule: types.RuleCapacityExceeded}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
