package postgresledger

import "errors"

var (
	// ErrNilDatabaseConnection is returned when a ledger is constructed without a database connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableName is returned when an empty table name is supplied as an option.
	ErrEmptyTableName = errors.New("table name must not be empty")

	// ErrZeroReturnDate is returned when a return is attempted without a return date.
	ErrZeroReturnDate = errors.New("return date must not be zero")

	// ErrNoExemplaryIDs is returned when a batch write is attempted without exemplaries.
	ErrNoExemplaryIDs = errors.New("at least one exemplary id is required")

	// ErrBuildingQueryFailed is returned when building an SQL query fails.
	ErrBuildingQueryFailed = errors.New("building the sql query failed")

	// ErrQueryingCheckoutsFailed is returned when reading checkout rows fails.
	ErrQueryingCheckoutsFailed = errors.New("querying checkouts failed")

	// ErrScanningDBRowFailed is returned when scanning a database row fails.
	ErrScanningDBRowFailed = errors.New("scanning the database row failed")

	// ErrBuildingCheckoutRecordFailed is returned when a database row does not
	// form a valid checkout record.
	ErrBuildingCheckoutRecordFailed = errors.New("building the checkout record failed")

	// ErrOpeningCheckoutFailed is returned when the borrow insert fails for
	// reasons other than an exclusivity conflict.
	ErrOpeningCheckoutFailed = errors.New("opening the checkout failed")

	// ErrClosingCheckoutFailed is returned when the return update fails for
	// reasons other than a missing open checkout.
	ErrClosingCheckoutFailed = errors.New("closing the checkout failed")

	// ErrGettingRowsAffectedFailed is returned when the rows affected count cannot be read.
	ErrGettingRowsAffectedFailed = errors.New("getting the rows affected count failed")

	// ErrSearchingExemplariesFailed is returned when the predicate search query fails.
	ErrSearchingExemplariesFailed = errors.New("searching exemplaries failed")
)
