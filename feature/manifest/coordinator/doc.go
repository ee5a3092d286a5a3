// Package coordinator performs the asset service calls of a manifest write.
//
// EnsureSpace creates the manifest's space at most once and stamps assets that
// arrived without one. Execute issues one bulk ingest and one association patch and
// turns the returned batch handles into Batch rows with status Ingesting.
// Every asset service failure is returned as an apperr ExternalServiceFailure carrying
// the upstream status, and the write is expected to abort.
package coordinator
