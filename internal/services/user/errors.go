package user

// UserError is a custom error type for profile errors
type UserError string

// Error implements the error interface
func (e UserError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNilConfig   UserError = "config cannot be nil"
	ErrNilUserRepo UserError = "user repository cannot be nil"
	ErrNilClock    UserError = "clock cannot be nil"
)
