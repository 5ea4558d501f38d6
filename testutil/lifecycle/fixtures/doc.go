// Package fixtures provides test fixtures for lifecycle engine testing.
//
// This package contains an in-memory CheckoutLedger fake that records how
// often each read method was called, plus a fixed clock. They enable testing
// the engine's batching guarantees and consistency handling without a
// database.
package fixtures
