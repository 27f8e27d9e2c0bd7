package errs

import "errors"

var (
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrGroupNotFound      = errors.New("nomor ticket not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSelfDelete         = errors.New("cannot delete your own account")
	ErrInvalidCredentials = errors.New("invalid username/email or password")
	ErrFileNotFound       = errors.New("file not found on ticket")
	ErrImportBadColumns   = errors.New("excel columns do not match template")
	ErrForbidden          = errors.New("forbidden")
)

// ValidationError is a recoverable user-input failure: the operation is
// aborted, nothing is persisted and the message goes back to the form.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(msg string) error { return &ValidationError{Msg: msg} }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
