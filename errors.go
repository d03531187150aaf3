package share

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeIdentityNotFound  = "identity_not_found"
	TextCodeInvalidCredential = "invalid_credentials"
	TextCodeEmailExists       = "email_exists"
	TextCodeTokenMalformed    = "token_malformed"
	TextCodeTokenExpired      = "token_expired"
	TextCodeTokenNoExpiration = "token_missing_expiration"
	TextCodeTokenNotProvided  = "token_not_provided"
	TextCodeNotOwner          = "not_owner"
)

// ErrIdentityNotFound is returned for missing identities. Deactivated
// accounts produce the same error during authentication so callers
// cannot probe which addresses exist.
var ErrIdentityNotFound = errors.New("User not found", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(errors.CodeNotFound)

// ErrMismatchedHashAndPassword is returned when a password does not match
// the stored hash.
var ErrMismatchedHashAndPassword = errors.New("Invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredential).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString is returned when an empty password reaches the hasher.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest)

// ErrEmailAlreadyExists is returned when registering an email that is
// already taken, active or not.
var ErrEmailAlreadyExists = errors.New("User with this email already exists", errors.CategoryConflict).
	WithTextCode(TextCodeEmailExists).
	WithCode(errors.CodeBadRequest)

// ErrTokenMalformed covers unparseable tokens and bad signatures.
var ErrTokenMalformed = errors.New("Unauthorized access. Invalid or missing token.", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned for well formed tokens past their expiration.
var ErrTokenExpired = errors.New("Expired session. Please login again.", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMissingExpiration is returned for otherwise valid tokens that
// carry no expiration claim.
var ErrTokenMissingExpiration = errors.New("Invalid token. Missing expiration.", errors.CategoryAuth).
	WithTextCode(TextCodeTokenNoExpiration).
	WithCode(errors.CodeUnauthorized)

// ErrTokenNotProvided is returned by the gate when no token reaches it.
var ErrTokenNotProvided = errors.New("Token not provided or invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenNotProvided).
	WithCode(errors.CodeUnauthorized)

// ErrNotOwner is returned when a caller mutates a post they do not own.
var ErrNotOwner = errors.New("You are not allowed to modify this post", errors.CategoryAuthz).
	WithTextCode(TextCodeNotOwner).
	WithCode(errors.CodeForbidden)

// ErrUnableToDecodeSession is returned when claims cannot be decoded from
// a token that parsed and validated.
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrSigningKeyMissing is returned when the token service is constructed
// without a signing key.
var ErrSigningKeyMissing = errors.New("token signing key is not configured", errors.CategoryInternal).
	WithCode(errors.CodeInternal)

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

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
