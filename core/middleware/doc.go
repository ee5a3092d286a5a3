// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: validates the API key and resolves the acting identity (X-Actor) that
//     is threaded into every write for audit fields.
//   - rayid: generates or propagates a request id (RayID), stored in the context
//     and echoed in the response headers for tracing.
package middleware
