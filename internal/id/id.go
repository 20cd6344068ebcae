// Package id generates run identifiers.
package id

import "github.com/oklog/ulid/v2"

// New returns a fresh ULID string. Lexicographic order follows creation
// time, which keeps run directories naturally sorted.
func New() string {
	return ulid.Make().String()
}
