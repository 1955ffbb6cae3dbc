//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"fmt"
)

// UpstreamFetchError means candidate, ranking or competitor data was unavailable.
// It is retried with backoff; after that the cycle is skipped.
type UpstreamFetchError struct {
	Source  string
	Message string
	Cause   error
}

func (e *UpstreamFetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("upstream fetch error (%s): %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("upstream fetch error (%s): %s", e.Source, e.Message)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the operation may be retried.
func (e *UpstreamFetchError) Retryable() bool { return true }

// RemediationError means content generation failed. It never fails a cycle.
type RemediationError struct {
	Gap     GapType
	Message string
	Cause   error
}

func (e *RemediationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("remediation error (%s): %s: %v", e.Gap, e.Message, e.Cause)
	}
	return fmt.Sprintf("remediation error (%s): %s", e.Gap, e.Message)
}

func (e *RemediationError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the operation may be retried.
func (e *RemediationError) Retryable() bool { return false }

// PersistenceConflictError means the portfolio changed between read and commit.
type PersistenceConflictError struct {
	ProjectID string
	Cause     error
}

func (e *PersistenceConflictError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("portfolio of project %s changed concurrently: %v", e.ProjectID, e.Cause)
	}
	return fmt.Sprintf("portfolio of project %s changed concurrently", e.ProjectID)
}

func (e *PersistenceConflictError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the operation may be retried.
func (e *PersistenceConflictError) Retryable() bool { return true }

// InvariantViolation means stored state breaks a portfolio invariant. It is
// fatal for the cycle and is never corrected silently.
type InvariantViolation struct {
	ProjectID string
	Rule      string
	Detail    string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in project %s: %s: %s", e.ProjectID, e.Rule, e.Detail)
}

// Retryable reports whether the operation may be retried.
func (e *InvariantViolation) Retryable() bool { return false }

// CycleTimeoutError means a cycle ran out of time before it finished. Nothing
// was committed; the next scheduled run may try again.
type CycleTimeoutError struct {
	Kind    CycleKind
	Timeout string
	Cause   error
}

func (e *CycleTimeoutError) Error() string {
	return fmt.Sprintf("%s cycle timed out after %s: %v", e.Kind, e.Timeout, e.Cause)
}

func (e *CycleTimeoutError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the operation may be retried.
func (e *CycleTimeoutError) Retryable() bool { return true }

// Invariant rule names.
const (
	RuleCapacityExceeded = "capacity_exceeded"
	RuleDuplicateActive  = "duplicate_active_term"
)

// IsRetryable reports whether err, or any error it wraps, is marked retryable.
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}
