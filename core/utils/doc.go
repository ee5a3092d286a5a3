// Package utils provides small helpers shared across packages: lenient conversion of
// JSON-decoded values (asset payload fields arrive as strings or float64) and slice
// chunking for bounded IN-clause queries.
package utils
