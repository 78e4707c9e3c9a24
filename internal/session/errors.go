package session

import (
	"errors"
	"fmt"
)

// Common session errors.
var (
	// ErrNoStudents is returned by LoadExam when the exam has no enrollments.
	ErrNoStudents = errors.New("exam has no enrolled students")

	// ErrNoQuestions is returned by LoadExam when the exam's question count
	// is not positive, so there is nothing to draw from.
	ErrNoQuestions = errors.New("exam has no questions to draw")

	// ErrDuplicateResult is returned by Store.CreateResult when the student
	// already has a persisted result. First write wins.
	ErrDuplicateResult = errors.New("student already has a result")

	// ErrInvalidGrade is returned by SubmitGrade for values outside the scale.
	ErrInvalidGrade = errors.New("grade is not on the 7-trinsskala")

	// ErrClosed is returned by any action after Close.
	ErrClosed = errors.New("session is closed")
)

// TransitionError reports an action invoked in a state that does not permit
// it. Engine state is left unchanged.
type TransitionError struct {
	From   State
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("action %q not allowed in state %s", e.Action, e.From)
}

// IsTransitionError reports whether err is a precondition failure.
func IsTransitionError(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}
