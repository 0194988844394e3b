package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind is the stable category surfaced to callers for every failure.
type ErrorKind string

const (
	KindValidation          ErrorKind = "validation_error"
	KindUnauthorized        ErrorKind = "unauthorized"
	KindTokenExpired        ErrorKind = "token_expired"
	KindTokenInvalid        ErrorKind = "token_invalid"
	KindTokenNotFound       ErrorKind = "token_not_found"
	KindAlreadyVerified     ErrorKind = "already_verified"
	KindUserNotFound        ErrorKind = "user_not_found"
	KindVerificationExpired ErrorKind = "verification_expired"
	KindVerificationInvalid ErrorKind = "verification_invalid"
	KindForbidden           ErrorKind = "forbidden"
	KindSigning             ErrorKind = "signing_error"
	KindInternal            ErrorKind = "internal_error"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrUnauthorized        = errors.New("invalid credentials")
	ErrTokenExpired        = errors.New("token has expired")
	ErrTokenInvalid        = errors.New("token is invalid")
	ErrTokenNotFound       = errors.New("token not found")
	ErrAlreadyVerified     = errors.New("email address is already verified")
	ErrUserNotFound        = errors.New("user not found")
	ErrVerificationExpired = errors.New("verification token has expired")
	ErrVerificationInvalid = errors.New("verification token is invalid")
	ErrForbidden           = errors.New("access forbidden")
	ErrSigning             = errors.New("token signing failed")
)

// kinds is checked in order; the first sentinel matched by errors.Is wins.
var kinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrValidation, KindValidation},
	{ErrUnauthorized, KindUnauthorized},
	{ErrTokenExpired, KindTokenExpired},
	{ErrTokenInvalid, KindTokenInvalid},
	{ErrTokenNotFound, KindTokenNotFound},
	{ErrAlreadyVerified, KindAlreadyVerified},
	{ErrUserNotFound, KindUserNotFound},
	{ErrVerificationExpired, KindVerificationExpired},
	{ErrVerificationInvalid, KindVerificationInvalid},
	{ErrForbidden, KindForbidden},
	{ErrSigning, KindSigning},
}

// KindOf classifies err. Unknown errors are KindInternal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// ValidationError lists the offending input fields. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError from field/message pairs.
func NewValidationError(kv ...string) *ValidationError {
	ve := &ValidationError{Fields: make(map[string]string, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		ve.Fields[kv[i]] = kv[i+1]
	}
	return ve
}

// Add records a message for field, keeping the first one reported.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, f := range names {
		parts = append(parts, fmt.Sprintf("%s %s", f, e.Fields[f]))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
