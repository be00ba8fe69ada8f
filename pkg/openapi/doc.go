// Package openapi exposes the public loader and parser contracts for the
// portal's contract documents. Implementations live under internal/openapi so
// the kin-openapi dependency stays hidden from consumers.
package openapi
