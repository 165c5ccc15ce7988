package valueobject

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// ApplicationStatus – immutable value object
// ---------------------------------------------------------------------------

// ApplicationStatus is the decided state of a loan application. Each status
// also has a stable numeric code used in storage and reporting.
type ApplicationStatus struct {
	value string
}

const (
	appStatusRejected = "REJECTED"
	appStatusApproved = "APPROVED"
	appStatusPending  = "PENDING"
)

var (
	ApplicationStatusRejected = ApplicationStatus{value: appStatusRejected}
	ApplicationStatusApproved = ApplicationStatus{value: appStatusApproved}
	ApplicationStatusPending  = ApplicationStatus{value: appStatusPending}
)

var validApplicationStatuses = map[string]ApplicationStatus{
	appStatusRejected: ApplicationStatusRejected,
	appStatusApproved: ApplicationStatusApproved,
	appStatusPending:  ApplicationStatusPending,
}

// Storage codes. REJECTED and APPROVED keep the values the reporting queries
// count on.
var statusCodes = map[string]int{
	appStatusRejected: 0,
	appStatusApproved: 1,
	appStatusPending:  2,
}

// NewApplicationStatus creates an ApplicationStatus from a raw string.
func NewApplicationStatus(s string) (ApplicationStatus, error) {
	v, ok := validApplicationStatuses[s]
	if !ok {
		return ApplicationStatus{}, fmt.Errorf("invalid application status: %q", s)
	}
	return v, nil
}

// ApplicationStatusFromCode maps a storage code back to a status.
func ApplicationStatusFromCode(code int) (ApplicationStatus, error) {
	for name, c := range statusCodes {
		if c == code {
			return validApplicationStatuses[name], nil
		}
	}
	return ApplicationStatus{}, fmt.Errorf("invalid application status code: %d", code)
}

// String returns the string representation of the status.
func (s ApplicationStatus) String() string { return s.value }

// Code returns the numeric storage code, or -1 for the zero value.
func (s ApplicationStatus) Code() int {
	if c, ok := statusCodes[s.value]; ok {
		return c
	}
	return -1
}

// IsZero returns true if the status has not been initialised.
func (s ApplicationStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s ApplicationStatus) Equal(other ApplicationStatus) bool {
	return s.value == other.value
}

// IsDecided reports whether the status is a terminal decision.
func (s ApplicationStatus) IsDecided() bool {
	return s.Equal(ApplicationStatusApproved) || s.Equal(ApplicationStatusRejected)
}

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)
