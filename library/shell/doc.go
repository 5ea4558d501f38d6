// Package shell carries the execution infrastructure shared by the library
// command and query handlers: retry with exponential backoff, handler result
// reporting, and the observability constants and interfaces the handlers
// emit against.
package shell
