// Package types provides type definitions for structured data used throughout the keyword portfolio engine.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Project is a tracked website whose keyword portfolio the engine manages.
// Projects are deactivated, never deleted.
type Project struct {
	ID               uuid.UUID `json:"id"`
	OwnerRef         string    `json:"owner_ref"`
	Domain           string    `json:"domain"`
	AuthorityBudget  int       `json:"authority_budget"`
	Active           bool      `json:"active"`
	PortfolioVersion int64     `json:"portfolio_version"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CreateProjectRequest is the payload used to onboard a project.
type CreateProjectRequest struct {
	OwnerRef        string `json:"owner_ref" validate:"required"`
	Domain          string `json:"domain" validate:"required,hostname"`
	AuthorityBudget int    `json:"authority_budget" validate:"gte=0,lte=100"`
}

// UpdateAuthorityRequest carries a new authority budget for a project.
type UpdateAuthorityRequest struct {
	AuthorityBudget int `json:"authority_budget" validate:"gte=0,lte=100"`
}

// Validate validates the CreateProjectRequest using the validator.
func (r *CreateProjectRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the UpdateAuthorityRequest using the validator.
func (r *UpdateAuthorityRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
