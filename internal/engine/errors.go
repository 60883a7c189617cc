package engine

import "fmt"

// #region input-error

// InputError reports an ambiguous or malformed query. Rejected immediately,
// with a message precise enough for the user to fix the question.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string {
	return e.Msg
}

// #endregion input-error

// #region truth-error

// TruthError reports a required truth row or window that could not be
// fetched, naming the failing stage.
type TruthError struct {
	Stage string
	Err   error
}

func (e *TruthError) Error() string {
	return fmt.Sprintf("truth unavailable at %s: %v", e.Stage, e.Err)
}

func (e *TruthError) Unwrap() error {
	return e.Err
}

// #endregion truth-error
