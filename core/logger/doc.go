// Package logger provides a structured logging facility based on Zap.
//
// # Context Awareness
//
// WithRayID extracts the RayID from a Fiber context and attaches it to the log entry,
// so all logs of a request can be correlated. ForManifest scopes a logger to the
// customer and manifest a write is working on.
//
// # Configuration
//
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	l := logger.ForManifest(log, 1, "m1")
//	l.Info("Manifest written", zap.String("state", "Created"))
package logger
