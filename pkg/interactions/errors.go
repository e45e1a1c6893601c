package interactions

import "errors"

// UserError is an error whose message is shown to the user as is.
type UserError struct {
	Message string
	Err     error
}

// NewUserError returns a UserError showing msg.
func NewUserError(msg string) *UserError {
	return &UserError{Message: msg}
}

// WrapUserError returns a UserError showing msg and wrapping err.
func WrapUserError(msg string, err error) *UserError {
	return &UserError{Message: msg, Err: err}
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// AsUserError reports whether err holds a UserError.
func AsUserError(err error) (*UserError, bool) {
	ue := new(UserError)
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
