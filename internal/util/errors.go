package util

import "errors"

// ValidationError rejects malformed input to an operation. No state is changed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// AccessDeniedError is returned when the caller is not entitled to the level or request.
type AccessDeniedError struct {
	Reason string
}

func (e *AccessDeniedError) Error() string { return e.Reason }

// NotFoundError is returned when a referenced test, level, question or request does not exist.
type NotFoundError struct {
	Reason string
}

func (e *NotFoundError) Error() string { return e.Reason }

func NewValidationError(reason string) error   { return &ValidationError{Reason: reason} }
func NewAccessDeniedError(reason string) error { return &AccessDeniedError{Reason: reason} }
func NewNotFoundError(reason string) error     { return &NotFoundError{Reason: reason} }

var (
	ErrUserNotFound       = NewNotFoundError("User not found")
	ErrLevelNotFound      = NewNotFoundError("Level not found")
	ErrTestNotFound       = NewNotFoundError("Test not found")
	ErrRequestNotFound    = NewNotFoundError("Request not found")
	ErrPathwayNotFound    = NewNotFoundError("Pathway not found")
	ErrCohortNotFound     = NewNotFoundError("Cohort not found")
	ErrEnrollmentNotFound = NewNotFoundError("Enrollment request not found")

	ErrLevelLocked      = NewAccessDeniedError("Cannot access this level yet")
	ErrNotRequestOwner  = NewAccessDeniedError("Request belongs to another approver")
	ErrNotDirectReport  = NewAccessDeniedError("Not authorized to view this user")
	ErrNotPathwayMember = NewAccessDeniedError("Enrollment belongs to another team")

	ErrNotBossLevel       = NewValidationError("Not a boss level")
	ErrTestsNotPassed     = NewValidationError("Must pass all tests first")
	ErrNoBossAssigned     = NewValidationError("No boss assigned")
	ErrInvalidBoss        = NewValidationError("Invalid boss selection")
	ErrBossRequired       = NewValidationError("Please select a boss")
	ErrSignoffPending     = NewValidationError("Sign-off request already pending")
	ErrLevelCompleted     = NewValidationError("Level already completed")
	ErrNotAwaitingSignoff = NewValidationError("Level is not awaiting sign-off")
	ErrFeedbackRequired   = NewValidationError("Feedback required for rejection")
	ErrRequestProcessed   = NewValidationError("Request already processed")
	ErrEnrollmentPending  = NewValidationError("Enrollment request already pending")
	ErrAlreadyEnrolled    = NewValidationError("Already enrolled in this pathway")
	ErrPathwayAssigned    = NewValidationError("Pathway already assigned to this cohort")
	ErrEmailRegistered    = NewValidationError("Email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// IsValidation, IsAccessDenied and IsNotFound classify an error chain.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsAccessDenied(err error) bool {
	var target *AccessDeniedError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
