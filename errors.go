package booking

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrSessionNotFound is returned when a session id does not resolve
var ErrSessionNotFound = errors.New("session not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode("SESSION_NOT_FOUND")

// ErrUserNotFound is returned when a user id does not resolve
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode("USER_NOT_FOUND")

// ErrTeacherNotFound is returned when a teacher id does not resolve
var ErrTeacherNotFound = errors.New("teacher not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode("TEACHER_NOT_FOUND")

// ErrAlreadyParticipating rejects a duplicate subscription to a session roster
var ErrAlreadyParticipating = errors.New("user already participates in session", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest).
	WithTextCode("ALREADY_PARTICIPATING")

// ErrNotParticipating rejects unsubscribing from a roster the user is not on
var ErrNotParticipating = errors.New("user does not participate in session", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest).
	WithTextCode("NOT_PARTICIPATING")

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("IDENTITY_NOT_FOUND")

// ErrMismatchedHashAndPassword signals a failed credential check. Unknown
// accounts collapse into this same error so login probes cannot tell the two
// cases apart.
var ErrMismatchedHashAndPassword = errors.New("invalid credentials", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("BAD_CREDENTIALS")

// ErrEmailTaken rejects registration with an email already on file
var ErrEmailTaken = errors.New("email already registered", errors.CategoryConflict).
	WithCode(errors.CodeBadRequest).
	WithTextCode("EMAIL_TAKEN")

// ErrTokenExpired signals an otherwise well formed token past its expiry
var ErrTokenExpired = errors.New("authentication token expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenMalformed covers structural and signature failures
var ErrTokenMalformed = errors.New("authentication token malformed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_MALFORMED")

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest).
	WithTextCode("EMPTY_VALUE")

// HasTextCode reports whether err is a rich error carrying the text code
func HasTextCode(err error, textCode string) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == textCode
}

// IsAlreadyParticipating will check for duplicate roster subscriptions
func IsAlreadyParticipating(err error) bool {
	return HasTextCode(err, ErrAlreadyParticipating.TextCode)
}

// IsNotParticipating will check for removals of absent memberships
func IsNotParticipating(err error) bool {
	return HasTextCode(err, ErrNotParticipating.TextCode)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError covers structural, signature and issuer failures, from
// this package or from the underlying jwt library
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if HasTextCode(err, ErrTokenMalformed.TextCode) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
