package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a game session id is unknown.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrSessionEnded is returned when acting on a finished session.
	ErrSessionEnded = errors.New("game session already ended")
	// ErrSessionConflict means the session changed between read and write.
	ErrSessionConflict = errors.New("game session was modified concurrently")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrQuestionMismatch is returned when a question is not the session's current one.
	ErrQuestionMismatch = errors.New("question is not the current question of the session")
	// ErrOptionNotFound indicates a submitted option ID is invalid.
	ErrOptionNotFound = errors.New("option not found")
	// ErrCategoryNotFound indicates the category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryNotPlayable is returned for inactive or non-quiz categories.
	ErrCategoryNotPlayable = errors.New("category is not playable")
	// ErrNoEligibleQuestion means the category is empty or exhausted for the user.
	ErrNoEligibleQuestion = errors.New("no eligible question left in category")
	// ErrLifelineUsed is returned when a lifeline is requested a second time.
	ErrLifelineUsed = errors.New("lifeline already used")
	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned on duplicate registration.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized means no valid token was presented.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the caller's role does not allow the action.
	ErrForbidden = errors.New("forbidden")
	// ErrBadgeNotFound indicates an unknown badge code.
	ErrBadgeNotFound = errors.New("badge not found")
	// ErrReportNotFound indicates an unknown error report.
	ErrReportNotFound = errors.New("error report not found")
	// ErrInvalidTransition is returned for an illegal report status change.
	ErrInvalidTransition = errors.New("invalid report status transition")
	// ErrUnknownEvent is returned for an unsupported badge event type.
	ErrUnknownEvent = errors.New("unknown badge event type")
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// Invalid builds a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
