// Package errors provides coded, structured errors for hostdom.
//
// Every error carries a short code (for example "E101") that maps to a
// registered template with a category, a one-line message and a longer
// explanation. Codes are stable and are what callers match on:
//
//	err := errors.New("E101").WithDetailf("node %d is an ancestor of %d", 4, 7)
//	if errors.HasCode(err, "E101") { ... }
//
// Errors compare equal under the standard library's errors.Is when their
// codes match, so packages can export sentinel values built with New and
// callers can use errors.Is against them.
//
// # Categories
//
//   - dom: structural misuse of the node tree
//   - host: failures reported by a host adapter
//   - protocol: wire decoding and framing
//   - config: configuration loading and validation
//   - cli: command line usage
package errors
