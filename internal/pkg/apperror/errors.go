package apperror

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeDuplicateEntity    Code = "DUPLICATE_ENTITY"
	CodeValidation         Code = "VALIDATION_FAILED"
	CodeExpired            Code = "EXPIRED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeDeliveryFailed     Code = "DELIVERY_FAILED"
	CodeConflict           Code = "CONFLICT"
	CodeInternal           Code = "INTERNAL"
)

// Kind refines a Code for callers that need to branch on the exact cause.
type Kind string

const (
	KindDuplicateUsername Kind = "duplicate_username"
	KindDuplicateEmail    Kind = "duplicate_email"
	KindTooShort          Kind = "too_short"
	KindRequired          Kind = "required"
	KindInvalidEmail      Kind = "invalid_email"
	KindOutOfRange        Kind = "out_of_range"
	KindSizeMismatch      Kind = "size_variant_mismatch"
	KindInactiveAccount   Kind = "inactive_account"
)

type Metadata struct {
	HTTPStatus    int
	PublicMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeNotFound:           {HTTPStatus: http.StatusNotFound, PublicMessage: "resource not found"},
	CodeDuplicateEntity:    {HTTPStatus: http.StatusConflict, PublicMessage: "resource already exists"},
	CodeValidation:         {HTTPStatus: http.StatusBadRequest, PublicMessage: "validation failed"},
	CodeExpired:            {HTTPStatus: http.StatusGone, PublicMessage: "token expired"},
	CodeInvalidCredentials: {HTTPStatus: http.StatusUnauthorized, PublicMessage: "invalid credentials"},
	CodeDeliveryFailed:     {HTTPStatus: http.StatusBadGateway, PublicMessage: "could not deliver email"},
	CodeConflict:           {HTTPStatus: http.StatusConflict, PublicMessage: "conflict detected"},
	CodeInternal:           {HTTPStatus: http.StatusInternalServerError, PublicMessage: "internal server error"},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	kind    Kind
	message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Kind() Kind {
	if e == nil {
		return ""
	}
	return e.kind
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// WithKind sets the refinement and returns the same error.
func (e *Error) WithKind(kind Kind) *Error {
	if e == nil {
		return nil
	}
	e.kind = kind
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches another *Error by code, and by kind when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if t.code != e.code {
		return false
	}
	return t.kind == "" || t.kind == e.kind
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf reports the code of err, CodeInternal for foreign errors.
func CodeOf(err error) Code {
	if appErr, ok := As(err); ok {
		return appErr.Code()
	}
	return CodeInternal
}

// KindOf reports the kind of err, or "" when none is set.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind()
	}
	return ""
}

func NotFound(format string, args ...any) *Error {
	return Newf(CodeNotFound, format, args...)
}

func Validation(kind Kind, format string, args ...any) *Error {
	return Newf(CodeValidation, format, args...).WithKind(kind)
}

func Duplicate(kind Kind, format string, args ...any) *Error {
	return Newf(CodeDuplicateEntity, format, args...).WithKind(kind)
}

// Sentinels usable as errors.Is targets.
var (
	ErrNotFound           = New(CodeNotFound, "")
	ErrDuplicateEntity    = New(CodeDuplicateEntity, "")
	ErrValidation         = New(CodeValidation, "")
	ErrExpired            = New(CodeExpired, "")
	ErrInvalidCredentials = New(CodeInvalidCredentials, "")
	ErrDeliveryFailed     = New(CodeDeliveryFailed, "")
	ErrConflict           = New(CodeConflict, "")
)
