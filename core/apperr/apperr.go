package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for propagation and caller-facing mapping.
type Kind string

const (
	KindValidation  Kind = "ValidationFailure"
	KindConflict    Kind = "ConflictFailure"
	KindConcurrency Kind = "ConcurrencyFailure"
	KindNotFound    Kind = "NotFoundFailure"
	KindExternal    Kind = "ExternalServiceFailure"
	KindExhausted   Kind = "ResourceExhaustion"
	KindUnexpected  Kind = "Unexpected"
)

// Category is the caller-facing result category.
type Category string

const (
	CategoryBadRequest         Category = "BadRequest"
	CategoryNotFound           Category = "NotFound"
	CategoryConflict           Category = "Conflict"
	CategoryPreconditionFailed Category = "PreconditionFailed"
	CategoryError              Category = "Error"
)

// Codes carried by Error.Code.
const (
	CodeCannotGenerateUniqueID        = "CannotGenerateUniqueId"
	CodeInvalidCanvasID               = "InvalidCanvasId"
	CodeDuplicateCanvasID             = "DuplicateCanvasId"
	CodeCanvasOrderDifferentCanvasID  = "CanvasOrderDifferentCanvasId"
	CodeMissingCanvasPaintingBlock    = "MissingCanvasPaintingBlock"
	CodeCouldNotRetrieveAssetID       = "CouldNotRetrieveAssetId"
	CodeDuplicateAssetID              = "DuplicateAssetId"
	CodeDuplicateChoiceOrder          = "DuplicateChoiceOrder"
	CodeETagMismatch                  = "ETagMismatch"
	CodeETagNotAllowed                = "ETagNotAllowed"
	CodeParentNotFound                = "ParentNotFound"
	CodeParentMustBeStorageCollection = "ParentMustBeStorageCollection"
	CodeProhibitedSlug                = "ProhibitedSlug"
	CodeDuplicateSlug                 = "DuplicateSlug"
	CodeInvalidRequest                = "InvalidRequest"
	CodeManifestNotFound              = "ManifestNotFound"
	CodeAssetService                  = "AssetServiceError"
	CodeUnknown                       = "Unknown"
)

// Error is the structured failure returned by every write stage.
type Error struct {
	Kind Kind
	Code string
	// Status is the upstream HTTP status for external failures, 0 otherwise.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	if e.Code != "" {
		return e.Code
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Category maps the failure to the caller-facing category.
func (e *Error) Category() Category {
	switch e.Kind {
	case KindValidation:
		return CategoryBadRequest
	case KindConflict:
		return CategoryConflict
	case KindConcurrency:
		return CategoryPreconditionFailed
	case KindNotFound:
		return CategoryNotFound
	case KindExternal:
		return externalCategory(e.Status)
	default:
		return CategoryError
	}
}

// HTTPStatus returns the status a handler should answer with.
func (e *Error) HTTPStatus() int {
	switch e.Category() {
	case CategoryBadRequest:
		return http.StatusBadRequest
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryConflict:
		return http.StatusConflict
	case CategoryPreconditionFailed:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

func externalCategory(status int) Category {
	switch status {
	case http.StatusBadRequest:
		return CategoryBadRequest
	case http.StatusNotFound:
		return CategoryNotFound
	case http.StatusConflict:
		return CategoryConflict
	default:
		return CategoryError
	}
}

// New builds an Error of the given kind.
func New(kind Kind, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

func Validation(code string, format string, args ...any) *Error {
	return New(KindValidation, code, fmt.Errorf(format, args...))
}

func Conflict(code string, format string, args ...any) *Error {
	return New(KindConflict, code, fmt.Errorf(format, args...))
}

func Concurrency(code string, format string, args ...any) *Error {
	return New(KindConcurrency, code, fmt.Errorf(format, args...))
}

func NotFound(code string, format string, args ...any) *Error {
	return New(KindNotFound, code, fmt.Errorf(format, args...))
}

func Exhausted(code string, err error) *Error {
	return New(KindExhausted, code, err)
}

// External wraps an asset-service failure, keeping its HTTP status.
func External(status int, err error) *Error {
	return &Error{Kind: KindExternal, Code: CodeAssetService, Status: status, Err: err}
}

// Unexpected wraps anything that is not a known failure.
func Unexpected(err error) *Error {
	return New(KindUnexpected, CodeUnknown, err)
}

// As extracts an *Error from err. Errors that are not already typed become Unexpected.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Unexpected(err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// FromExternal wraps a failed call to an external service. Errors exposing
// HTTPStatusCode keep their status so the caller-facing category follows it.
func FromExternal(op string, err error) *Error {
	var coded interface{ HTTPStatusCode() int }
	status := 0
	if errors.As(err, &coded) {
		status = coded.HTTPStatusCode()
	}
	return External(status, fmt.Errorf("%s: %w", op, err))
}
