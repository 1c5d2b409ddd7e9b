// Package validation binds request payloads and enforces the
// rules declared in their struct tags.
//
// Violations are converted into field-level errors the client
// can display next to the offending input.
package validation
