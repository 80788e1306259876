package security

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownAutonomyLevel = errors.New("unknown autonomy level")
	ErrQuotaExceeded        = errors.New("quota exceeded")
	ErrPolicyDenied         = errors.New("denied by security policy")
	ErrApprovalDenied       = errors.New("approval denied")
)

// QuotaKind names the rolling counter that ran out.
type QuotaKind string

const (
	QuotaActionsPerHour QuotaKind = "actions_per_hour"
	QuotaCostPerDay     QuotaKind = "cost_per_day_cents"
)

// QuotaExceededError is returned by RecordAction when a limit would be exceeded.
type QuotaExceededError struct {
	Kind  QuotaKind
	Limit int
	Used  int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %s limit %d (used %d)", e.Kind, e.Limit, e.Used)
}

func (e *QuotaExceededError) Unwrap() error { return ErrQuotaExceeded }

// PolicyDeniedError is returned when a path or command is rejected.
type PolicyDeniedError struct {
	Subject string
	Reason  string
}

func (e *PolicyDeniedError) Error() string {
	return fmt.Sprintf("denied %q: %s", e.Subject, e.Reason)
}

func (e *PolicyDeniedError) Unwrap() error { return ErrPolicyDenied }

// PolicyDenied marks the error as a policy decision rather than a fault.
func (e *PolicyDeniedError) PolicyDenied() bool { return true }
