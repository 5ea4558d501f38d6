package postgrescatalog

import "errors"

var (
	// ErrNilDatabaseConnection is returned when a catalog is constructed without a database connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableName is returned when an empty table name is supplied as an option.
	ErrEmptyTableName = errors.New("table name must not be empty")

	// ErrNoExemplaryIDs is returned when a catalog write is attempted without target exemplaries.
	ErrNoExemplaryIDs = errors.New("at least one exemplary id is required")

	// ErrBuildingQueryFailed is returned when building an SQL query fails.
	ErrBuildingQueryFailed = errors.New("building the sql query failed")

	// ErrQueryingCatalogFailed is returned when reading catalog rows fails.
	ErrQueryingCatalogFailed = errors.New("querying the catalog failed")

	// ErrScanningDBRowFailed is returned when scanning a database row fails.
	ErrScanningDBRowFailed = errors.New("scanning the database row failed")

	// ErrBuildingSnapshotFailed is returned when a database row does not form a
	// valid exemplary snapshot.
	ErrBuildingSnapshotFailed = errors.New("building the exemplary snapshot failed")

	// ErrWritingCatalogFailed is returned when a catalog write statement fails.
	ErrWritingCatalogFailed = errors.New("writing the catalog failed")

	// ErrGettingRowsAffectedFailed is returned when the rows affected count cannot be read.
	ErrGettingRowsAffectedFailed = errors.New("getting the rows affected count failed")

	// ErrExemplariesNotFound is returned when a targeted catalog write matched
	// fewer rows than exemplaries addressed.
	ErrExemplariesNotFound = errors.New("some exemplaries do not exist in the catalog")
)
