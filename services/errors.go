package services

import (
	"errors"
	"strings"
)

// Sentinel errors the HTTP layer maps onto status codes. Services wrap these
// with context via fmt.Errorf("...: %w", ...); handlers test with errors.Is.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("not allowed to access this resource")

	ErrAlreadyApplied  = errors.New("you have already applied for this scholarship")
	ErrMutualExclusion = errors.New("cannot apply due to mutually exclusive scholarship rules")

	ErrNotRenewable    = errors.New("this scholarship does not support renewal")
	ErrNoPriorApproval = errors.New("renewal requires a previously approved application")
	ErrRenewalPending  = errors.New("a renewal application is already pending")

	ErrSwitchLimitExceeded = errors.New("scholarship switch limit exceeded")
	ErrNoConflictFound     = errors.New("no conflicting application found for this scholarship")

	ErrInvalidStateTransition = errors.New("application is not in a resubmittable state")

	ErrInvalidFileType   = errors.New("invalid file type, only PDF, JPG and PNG are allowed")
	ErrFileTooLarge      = errors.New("file exceeds the maximum allowed size")
	ErrPageLimitExceeded = errors.New("document exceeds the allowed page count")
)

// ValidationError carries every unmet document requirement at once so the
// student sees the full list instead of fixing one item per round trip.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "document validation failed: " + strings.Join(e.Reasons, "; ")
}
