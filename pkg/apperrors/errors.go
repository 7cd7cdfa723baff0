package apperrors

import (
	"errors"
	"fmt"
)

// AppError is the error type surfaced by the data-access layer. Handlers map
// its Code to an HTTP status; the Message is safe to show to callers.
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

func New(code Code, message string) error {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) error {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func NotFound(msg string) error {
	return New(CodeNotFound, msg)
}

func Unauthorized(msg string) error {
	return New(CodeUnauthorized, msg)
}

func Persistence(msg string, cause error) error {
	return Wrap(CodePersistence, msg, cause)
}

func InvalidArg(msg string) error {
	return New(CodeInvalidArgument, msg)
}

func Internal(msg string) error {
	return New(CodeInternal, msg)
}

// CodeOf returns the code carried by err, or CodeUnknown for foreign errors.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

func IsNotFound(err error) bool     { return CodeOf(err) == CodeNotFound }
func IsUnauthorized(err error) bool { return CodeOf(err) == CodeUnauthorized }
