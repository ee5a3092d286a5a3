// Package identity generates short unique ids for manifests and canvases.
//
// Callers treat the generator as an external collaborator: it either returns the
// requested number of distinct, unused ids or fails with ErrIdentityExhausted. It never
// relies on a uniqueness-constraint violation to detect collisions; candidates are
// checked up front against the configured table columns.
package identity
