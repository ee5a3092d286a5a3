// Package server holds the HTTP server configuration.
//
// Besides the listening port and API key, it carries the public base URL from which
// manifest and canvas URIs are built and against which caller-supplied canvas ids are
// validated.
package server
