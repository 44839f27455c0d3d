package common

// AppError is the error contract every handler renders: a stable machine
// code, an operator-facing message, and the HTTP status to answer with.
// Details carries structured context such as the offending item index on a
// finalization rejection.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped cause so errors.Is can match the pricing
// sentinels underneath.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError wraps err with a rejection code and HTTP status.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}
