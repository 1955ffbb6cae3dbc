// Package server provides the HTTP API of the keyword portfolio engine.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/keyword-portfolio/internal/db"
	"github.com/jonathan/keyword-portfolio/internal/types"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation  *ErrValidation
		fields      validator.ValidationErrors
		upstream    *types.UpstreamFetchError
		conflict    *types.PersistenceConflictError
		remediation *types.RemediationError
		timeout     *types.CycleTimeoutError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &fields):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrProjectNotFound), errors.Is(err, db.ErrKeywordNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrDuplicateProject), errors.Is(err, db.ErrProjectInactive), errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &timeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &upstream), errors.As(err, &remediation):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
