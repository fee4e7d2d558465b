package tournament

import (
	"errors"
	"fmt"
)

// Validation reasons reported to callers. These travel verbatim in HTTP
// error payloads, so they are stable identifiers.
const (
	ReasonEmptyLabel           = "empty_label"
	ReasonDuplicateLabel       = "duplicate_label"
	ReasonOutOfRangeLabel      = "out_of_range_label"
	ReasonInvalidTriple        = "invalid_triple"
	ReasonEmptyName            = "empty_name"
	ReasonSubmissionsClosed    = "submissions_closed"
	ReasonSubmissionsStillOpen = "submissions_still_open"
	ReasonInvalidQuestionID    = "invalid_question_id"
)

// ValidationError marks caller-correctable input or lifecycle violations.
// The core rejects, it never crashes.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(reason, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// AsValidation unwraps err into a ValidationError, if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// NotFoundError reports a lookup with no matching submission. Callers treat
// it as "no submission yet", not as a failure.
type NotFoundError struct {
	QuestionID int
	Name       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no submission for question %d by %q", e.QuestionID, e.Name)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
