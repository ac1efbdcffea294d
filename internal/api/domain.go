package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy shared by repositories, services and handlers.
var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidToken       = errors.New("token is not valid")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthorized      = errors.New("user not authorized")
	ErrNotFound           = errors.New("requested item not found")
	ErrEmailTaken         = errors.New("user already exists")
	ErrAlreadyLiked       = errors.New("post already liked")
	ErrNotYetLiked        = errors.New("post has not yet been liked")
	ErrUpstream           = errors.New("upstream request failed")

	// ErrVersionConflict is returned by repositories when a replace lost a
	// race against another writer of the same document.
	ErrVersionConflict = errors.New("version conflict")
	// ErrConflict is returned by services when retries on ErrVersionConflict
	// were exhausted.
	ErrConflict = errors.New("concurrent modification, please retry")
	// ErrPartialDelete marks an account deletion that stopped midway.
	ErrPartialDelete = errors.New("account deletion incomplete")
)

// MessageError pairs an error kind from the taxonomy with the message the
// caller should see.
type MessageError struct {
	Kind error
	Msg  string
}

func (e *MessageError) Error() string { return e.Msg }

func (e *MessageError) Unwrap() error { return e.Kind }

// WithMessage returns an error matching kind under errors.Is whose
// caller-facing message is the formatted string.
func WithMessage(kind error, format string, args ...interface{}) error {
	return &MessageError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Response represents a generic API response for success or error messages.
type Response struct {
	Success bool        `json:"success" example:"true"` // Indicates if the operation was successful.
	Msg     interface{} `json:"msg,omitempty"`          // Payload or human readable message.
}

// FieldError describes one invalid request field.
type FieldError struct {
	Msg      string `json:"msg" example:"Text is required."`
	Param    string `json:"param" example:"text"`
	Location string `json:"location" example:"body"`
}

// ValidationError carries the field errors of a rejected request body.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + e.Fields[0].Msg
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validator collects field errors for a request body.
type Validator struct {
	fields []FieldError
}

// Require records msg for param when value is empty.
func (v *Validator) Require(param, value, msg string) {
	v.Check(value != "", param, msg)
}

// Check records msg for param when ok is false.
func (v *Validator) Check(ok bool, param, msg string) {
	if !ok {
		v.fields = append(v.fields, FieldError{Msg: msg, Param: param, Location: "body"})
	}
}

// Err returns a *ValidationError when any check failed, nil otherwise.
func (v *Validator) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

// StatusFor maps an error from the taxonomy to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrAlreadyLiked),
		errors.Is(err, ErrNotYetLiked),
		errors.Is(err, ErrUpstream):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrExpiredToken),
		errors.Is(err, ErrNotAuthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrVersionConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// MessageFor returns the caller-facing message for err. Unexpected errors
// never leak their detail.
func MessageFor(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid credentials."
	case errors.Is(err, ErrEmailTaken):
		return "User already exists."
	case errors.Is(err, ErrAlreadyLiked):
		return "Post already liked."
	case errors.Is(err, ErrNotYetLiked):
		return "Post has not yet been liked."
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrExpiredToken):
		return "Token is not valid, authorization denied."
	case errors.Is(err, ErrNotAuthorized):
		return "User not authorized."
	case errors.Is(err, ErrConflict), errors.Is(err, ErrVersionConflict):
		return "Resource was modified concurrently, please retry."
	case errors.Is(err, ErrPartialDelete):
		return "Account deletion is incomplete, please retry."
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUpstream),
		errors.Is(err, ErrValidation):
		var merr *MessageError
		if errors.As(err, &merr) {
			return merr.Msg
		}
		return err.Error()
	default:
		return "Server Error."
	}
}
