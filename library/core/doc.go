// Package core contains the pure decision logic of the library workflows.
//
// Decide functions in the feature packages take the current lifecycle state
// and a command and return a DecisionResult; they perform no I/O. The shell
// packages own persistence and retry around those decisions.
package core
