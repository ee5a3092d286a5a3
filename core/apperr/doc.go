// Package apperr defines the failure taxonomy of the manifest write pipeline.
//
// Every stage returns a plain error; failures the caller should see are *Error values
// carrying a Kind (validation, conflict, concurrency, not found, external service,
// resource exhaustion) and a precise Code such as "DuplicateCanvasId". Handlers map
// an *Error to a caller-facing Category and HTTP status.
package apperr
