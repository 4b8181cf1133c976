package domain

import (
	"errors"
	"fmt"
)

var (
	MessageFailedBodyRequest = "failed to process body request"

	ErrParseUUID    = errors.New("failed to parse UUID")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")

	ErrUserNotFound       = errors.New("user not found")
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrTagNotFound        = errors.New("tag not found")
	ErrIngredientNotFound = errors.New("ingredient not found")

	// ErrForbidden is returned when the actor is not the recipe's author.
	ErrForbidden = errors.New("only the author may modify this recipe")
)

// ValidationError reports malformed or semantically invalid input. The reason
// is surfaced to the caller as-is; these are never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
