package fixtures

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
)

// FakeCheckoutLedger is an in-memory CheckoutLedger implementation that
// captures read calls for testing.
//
// It answers from records supplied via WithOpenCheckouts / WithLatestClosed
// and counts how often each read method was invoked, so tests can assert the
// engine's bounded-ledger-reads guarantee.
type FakeCheckoutLedger struct {
	openRecords           []lifecycle.CheckoutRecord
	latestClosedRecords   map[uuid.UUID]lifecycle.CheckoutRecord
	failListOpenWith      error
	failLatestClosedWith  error
	listOpenCalls         int
	listLatestClosedCalls int
	mu                    sync.Mutex
}

// NewFakeCheckoutLedger creates a new empty FakeCheckoutLedger.
func NewFakeCheckoutLedger() *FakeCheckoutLedger {
	return &FakeCheckoutLedger{
		latestClosedRecords: make(map[uuid.UUID]lifecycle.CheckoutRecord),
	}
}

// WithOpenCheckouts seeds open checkout records to be returned by ListOpen.
// Multiple records for the same exemplary are allowed so tests can exercise
// the engine's inconsistency handling.
func (f *FakeCheckoutLedger) WithOpenCheckouts(records ...lifecycle.CheckoutRecord) *FakeCheckoutLedger {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openRecords = append(f.openRecords, records...)

	return f
}

// WithLatestClosed seeds the latest closed checkout record for its exemplary.
func (f *FakeCheckoutLedger) WithLatestClosed(records ...lifecycle.CheckoutRecord) *FakeCheckoutLedger {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range records {
		f.latestClosedRecords[record.ExemplaryID] = record
	}

	return f
}

// FailListOpenWith makes ListOpen return the given error.
func (f *FakeCheckoutLedger) FailListOpenWith(err error) *FakeCheckoutLedger {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failListOpenWith = err

	return f
}

// FailListLatestClosedWith makes ListLatestClosed return the given error.
func (f *FakeCheckoutLedger) FailListLatestClosedWith(err error) *FakeCheckoutLedger {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failLatestClosedWith = err

	return f
}

// ListOpen implements the CheckoutLedger interface.
// It returns the seeded open records restricted to the requested exemplaries.
func (f *FakeCheckoutLedger) ListOpen(_ context.Context, exemplaryIDs []uuid.UUID) ([]lifecycle.CheckoutRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listOpenCalls++

	if f.failListOpenWith != nil {
		return nil, f.failListOpenWith
	}

	requested := make(map[uuid.UUID]bool, len(exemplaryIDs))
	for _, id := range exemplaryIDs {
		requested[id] = true
	}

	var result []lifecycle.CheckoutRecord
	for _, record := range f.openRecords {
		if requested[record.ExemplaryID] {
			result = append(result, record)
		}
	}

	return result, nil
}

// ListLatestClosed implements the CheckoutLedger interface.
// It returns the seeded latest closed records restricted to the requested exemplaries.
func (f *FakeCheckoutLedger) ListLatestClosed(
	_ context.Context,
	exemplaryIDs []uuid.UUID,
) (map[uuid.UUID]lifecycle.CheckoutRecord, error) {

	f.mu.Lock()
	defer f.mu.Unlock()
	f.listLatestClosedCalls++

	if f.failLatestClosedWith != nil {
		return nil, f.failLatestClosedWith
	}

	result := make(map[uuid.UUID]lifecycle.CheckoutRecord, len(exemplaryIDs))
	for _, id := range exemplaryIDs {
		if record, found := f.latestClosedRecords[id]; found {
			result[id] = record
		}
	}

	return result, nil
}

// GetListOpenCalls returns how often ListOpen was invoked.
func (f *FakeCheckoutLedger) GetListOpenCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.listOpenCalls
}

// GetListLatestClosedCalls returns how often ListLatestClosed was invoked.
func (f *FakeCheckoutLedger) GetListLatestClosedCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.listLatestClosedCalls
}

// Reset clears seeded records, configured failures and call counters.
func (f *FakeCheckoutLedger) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openRecords = nil
	f.latestClosedRecords = make(map[uuid.UUID]lifecycle.CheckoutRecord)
	f.failListOpenWith = nil
	f.failLatestClosedWith = nil
	f.listOpenCalls = 0
	f.listLatestClosedCalls = 0
}

// Compile-time check to ensure FakeCheckoutLedger implements the CheckoutLedger interface.
var _ lifecycle.CheckoutLedger = (*FakeCheckoutLedger)(nil)
