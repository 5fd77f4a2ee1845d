// Package normalize canonicalizes user input before it is validated, encoded
// or stored. Every function in this package is idempotent:
// N(N(x)) == N(x).
package normalize
