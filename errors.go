package lazyhlo

import (
	"fmt"

	"github.com/pkg/errors"
)

// StageError is a fatal pipeline error, with the stage where it happened and the underlying cause,
// usually the device client diagnostic.
type StageError struct {
	Stage Stage
	Err   error
}

// Error implements error.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error { return e.Err }

// Cause returns the underlying error, see github.com/pkg/errors.Cause.
func (e *StageError) Cause() error { return e.Err }

// Format implements fmt.Formatter: "%+v" includes the stack trace of the cause, if it has one.
func (e *StageError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		_, _ = fmt.Fprintf(s, "%s error: %+v", e.Stage, e.Err)
		return
	}
	_, _ = fmt.Fprint(s, e.Error())
}

// stageError wraps err, with a message, as a StageError of the given stage.
func stageError(stage Stage, err error, format string, args ...any) error {
	return &StageError{Stage: stage, Err: errors.WithMessagef(err, format, args...)}
}

// IsStage returns whether err is (or wraps) a StageError of the given stage.
func IsStage(err error, stage Stage) bool {
	var stageErr *StageError
	return errors.As(err, &stageErr) && stageErr.Stage == stage
}

// ErrorStage returns the stage of the StageError in err's chain, or StageInvalid if there is none.
func ErrorStage(err error) Stage {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return StageInvalid
}
