package db

import "errors"

// Domain-level storage error sentinels.
var (
	// Project errors
	ErrProjectNotFound  = errors.New("project not found")
	ErrProjectInactive  = errors.New("project is inactive")
	ErrDuplicateProject = errors.New("project already exists for this owner and domain")

	// Portfolio errors
	ErrVersionConflict  = errors.New("portfolio version changed since it was read")
	ErrKeywordNotFound  = errors.New("keyword not found")
	ErrCapacityExceeded = errors.New("commit would exceed portfolio capacity")
	ErrDuplicateKeyword = errors.New("term already exists in the portfolio")
)
