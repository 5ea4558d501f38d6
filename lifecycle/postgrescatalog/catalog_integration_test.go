package postgrescatalog_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle/postgrescatalog"
	"github.com/mediatheque/exemplary-lifecycle-go/testutil/postgresconfig"
)

const postgresEnvVar = "POSTGRES_INTEGRATION_TESTS"

// requirePostgres skips the test unless the local test database is opted in.
// The skip must happen before any postgresconfig helper runs, those terminate
// the test binary when no database is reachable.
func requirePostgres(t *testing.T) {
	t.Helper()

	if os.Getenv(postgresEnvVar) == "" {
		t.Skipf("set %s to run against the local test database", postgresEnvVar)
	}
}

type catalogTables struct {
	exemplaries string
	shelves     string
	books       string
}

func createCatalogTables(t *testing.T, db *sqlx.DB) catalogTables {
	t.Helper()

	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")
	tables := catalogTables{
		exemplaries: "exemplaries_" + suffix,
		shelves:     "shelves_" + suffix,
		books:       "books_" + suffix,
	}

	statements := []string{
		fmt.Sprintf(
			`CREATE TABLE %s (
				id uuid PRIMARY KEY,
				room_id uuid NOT NULL,
				number int NOT NULL
			)`, tables.shelves),
		fmt.Sprintf(
			`CREATE TABLE %s (
				id uuid PRIMARY KEY,
				title text NOT NULL,
				author text NOT NULL,
				genre text NOT NULL,
				publication_year int NOT NULL
			)`, tables.books),
		fmt.Sprintf(
			`CREATE TABLE %s (
				id uuid PRIMARY KEY,
				identifier text NOT NULL,
				book_id uuid NOT NULL,
				acquisition_date date NOT NULL,
				price_cents bigint NOT NULL,
				in_storage boolean NOT NULL,
				shelf_id uuid,
				return_to_shelf_date date
			)`, tables.exemplaries),
	}

	for _, statement := range statements {
		_, err := db.ExecContext(context.Background(), statement)
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		for _, tableName := range []string{tables.exemplaries, tables.books, tables.shelves} {
			_, dropErr := db.ExecContext(context.Background(), "DROP TABLE IF EXISTS "+tableName)
			assert.NoError(t, dropErr)
		}
	})

	return tables
}

func newIntegrationCatalog(t *testing.T, db *sqlx.DB, tables catalogTables) postgrescatalog.Catalog {
	t.Helper()

	catalog, err := postgrescatalog.NewCatalogFromSQLX(db,
		postgrescatalog.WithExemplariesTableName(tables.exemplaries),
		postgrescatalog.WithShelvesTableName(tables.shelves),
		postgrescatalog.WithBooksTableName(tables.books))
	require.NoError(t, err)

	return catalog
}

func Test_Integration_Catalog_ExemplaryPlacementRoundTrip(t *testing.T) {
	requirePostgres(t)

	// setup
	db := postgresconfig.SQLXSingleConfig()
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	tables := createCatalogTables(t, db)
	catalog := newIntegrationCatalog(t, db, tables)

	shelf, err := postgrescatalog.BuildShelf(uuid.New(), uuid.New(), 1)
	require.NoError(t, err)
	require.NoError(t, catalog.InsertShelves(context.Background(), []postgrescatalog.Shelf{shelf}))

	loadedShelf, err := catalog.LoadShelf(context.Background(), shelf.ID)
	require.NoError(t, err)
	require.NotNil(t, loadedShelf)
	assert.Equal(t, shelf, *loadedShelf)

	bookID := uuid.New()
	acquisitionDate := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	shelved, err := postgrescatalog.BuildNewExemplary(
		uuid.New(), "INV-1001", bookID, acquisitionDate, 1990, false, shelf.ID)
	require.NoError(t, err)
	stored, err := postgrescatalog.BuildNewExemplary(
		uuid.New(), "INV-1002", bookID, acquisitionDate, 1990, true, uuid.Nil)
	require.NoError(t, err)

	require.NoError(t, catalog.InsertExemplaries(
		context.Background(), []postgrescatalog.NewExemplary{shelved, stored}))

	// act + assert: the stored exemplary moves onto the shelf
	require.NoError(t, catalog.PlaceOnShelf(context.Background(), []uuid.UUID{stored.ID}, shelf.ID))

	snapshots, err := catalog.LoadExemplaries(context.Background(), []uuid.UUID{stored.ID})
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.False(t, snapshots[0].InStorage)
	assert.Equal(t, shelf.ID, snapshots[0].ShelfID)

	// act + assert: and back into storage, which clears the location
	require.NoError(t, catalog.MoveToStorage(context.Background(), []uuid.UUID{stored.ID}))

	snapshots, err = catalog.LoadExemplaries(context.Background(), []uuid.UUID{stored.ID})
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.True(t, snapshots[0].InStorage)
	assert.Equal(t, uuid.Nil, snapshots[0].ShelfID)
}

func Test_Integration_Catalog_ReturnToShelfDateRoundTrip(t *testing.T) {
	requirePostgres(t)

	// setup
	db := postgresconfig.SQLXSingleConfig()
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	tables := createCatalogTables(t, db)
	catalog := newIntegrationCatalog(t, db, tables)

	exemplary, err := postgrescatalog.BuildNewExemplary(
		uuid.New(), "INV-2001", uuid.New(), time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), 1490, true, uuid.Nil)
	require.NoError(t, err)
	require.NoError(t, catalog.InsertExemplaries(
		context.Background(), []postgrescatalog.NewExemplary{exemplary}))

	stampDate := time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC)

	// act + assert: stamp, then clear
	require.NoError(t, catalog.StampReturnToShelf(context.Background(), []uuid.UUID{exemplary.ID}, stampDate))

	snapshots, err := catalog.LoadExemplaries(context.Background(), []uuid.UUID{exemplary.ID})
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, stampDate, snapshots[0].ReturnToShelfDate)

	require.NoError(t, catalog.ClearReturnToShelfDate(context.Background(), []uuid.UUID{exemplary.ID}))

	snapshots, err = catalog.LoadExemplaries(context.Background(), []uuid.UUID{exemplary.ID})
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.True(t, snapshots[0].ReturnToShelfDate.IsZero())

	// addressing an unknown exemplary surfaces as a not-found error
	unknownErr := catalog.ClearReturnToShelfDate(context.Background(), []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, unknownErr, postgrescatalog.ErrExemplariesNotFound)
}

func Test_Integration_Catalog_BookFusionRoundTrip(t *testing.T) {
	requirePostgres(t)

	// setup
	db := postgresconfig.SQLXSingleConfig()
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	tables := createCatalogTables(t, db)
	catalog := newIntegrationCatalog(t, db, tables)

	survivorID := uuid.New()
	duplicateID := uuid.New()

	insertBook := fmt.Sprintf(
		`INSERT INTO %s (id, title, author, genre, publication_year) VALUES ($1, $2, $3, $4, $5)`,
		tables.books)
	_, err := db.ExecContext(context.Background(), insertBook, survivorID.String(), "Le Guide", "Adams", "SF", 1979)
	require.NoError(t, err)
	_, err = db.ExecContext(context.Background(), insertBook, duplicateID.String(), "Le guide", "Adams", "", 0)
	require.NoError(t, err)

	exemplary, err := postgrescatalog.BuildNewExemplary(
		uuid.New(), "INV-3001", duplicateID, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), 990, true, uuid.Nil)
	require.NoError(t, err)
	require.NoError(t, catalog.InsertExemplaries(
		context.Background(), []postgrescatalog.NewExemplary{exemplary}))

	books, err := catalog.LoadBooks(context.Background(), []uuid.UUID{survivorID, duplicateID})
	require.NoError(t, err)
	assert.Len(t, books, 2)

	// act: re-parent the duplicate's exemplaries, then delete the duplicate
	reparented, err := catalog.ReparentExemplaries(context.Background(), []uuid.UUID{duplicateID}, survivorID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reparented)

	require.NoError(t, catalog.DeleteBooks(context.Background(), []uuid.UUID{duplicateID}))

	// assert
	books, err = catalog.LoadBooks(context.Background(), []uuid.UUID{survivorID, duplicateID})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, survivorID, books[0].ID)
}
