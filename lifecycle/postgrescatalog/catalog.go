package postgrescatalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle/internal/adapters"
)

const (
	defaultExemplariesTableName = "exemplaries"
	defaultShelvesTableName     = "shelves"
	defaultBooksTableName       = "books"

	dialectPostgres = "postgres"
	dateLayout      = "2006-01-02"

	colID                = "id"
	colIdentifier        = "identifier"
	colBookID            = "book_id"
	colAcquisitionDate   = "acquisition_date"
	colPriceCents        = "price_cents"
	colInStorage         = "in_storage"
	colShelfID           = "shelf_id"
	colReturnToShelfDate = "return_to_shelf_date"
	colRoomID            = "room_id"
	colNumber            = "number"
	colTitle             = "title"
	colAuthor            = "author"
	colGenre             = "genre"
	colPublicationYear   = "publication_year"

	logMsgBuildQueryFailed = "failed to build sql query"
	logMsgDBQueryFailed    = "database query execution failed"
	logMsgDBExecFailed     = "database execution failed"
	logMsgCloseRowsFailed  = "failed to close database rows"
	logMsgScanRowFailed    = "failed to scan database row"
	logMsgSQLExecuted      = "executed sql for: "
	logAttrError           = "error"
	logAttrQuery           = "query"
	logAttrDurationMS      = "duration_ms"
)

// Catalog is the PostgreSQL store for exemplaries, shelves, and books.
//
// Reads return the lifecycle DTOs the engine consumes; writes keep the
// denormalized lifecycle fields (storage flag, shelf, return-to-shelf date)
// consistent with the workflows' decisions.
type Catalog struct {
	db                   adapters.DBAdapter
	exemplariesTableName string
	shelvesTableName     string
	booksTableName       string
	logger               Logger
	contextualLogger     ContextualLogger
}

// NewCatalogFromPGXPool creates a new Catalog using a pgx Pool with optional configuration.
func NewCatalogFromPGXPool(db *pgxpool.Pool, options ...Option) (Catalog, error) {
	if db == nil {
		return Catalog{}, ErrNilDatabaseConnection
	}

	return newCatalog(adapters.NewPGXAdapter(db), options...)
}

// NewCatalogFromSQLDB creates a new Catalog using a sql.DB with optional configuration.
func NewCatalogFromSQLDB(db *sql.DB, options ...Option) (Catalog, error) {
	if db == nil {
		return Catalog{}, ErrNilDatabaseConnection
	}

	return newCatalog(adapters.NewSQLAdapter(db), options...)
}

// NewCatalogFromSQLX creates a new Catalog using a sqlx.DB with optional configuration.
func NewCatalogFromSQLX(db *sqlx.DB, options ...Option) (Catalog, error) {
	if db == nil {
		return Catalog{}, ErrNilDatabaseConnection
	}

	return newCatalog(adapters.NewSQLXAdapter(db), options...)
}

func newCatalog(db adapters.DBAdapter, options ...Option) (Catalog, error) {
	catalog := Catalog{
		db:                   db,
		exemplariesTableName: defaultExemplariesTableName,
		shelvesTableName:     defaultShelvesTableName,
		booksTableName:       defaultBooksTableName,
	}

	for _, option := range options {
		if err := option(&catalog); err != nil {
			return Catalog{}, err
		}
	}

	return catalog, nil
}

// LoadExemplaries returns the lifecycle snapshots of the given exemplaries.
// Unknown ids are simply absent from the result.
func (c Catalog) LoadExemplaries(ctx context.Context, ids []uuid.UUID) ([]lifecycle.ExemplarySnapshot, error) {
	if len(ids) == 0 {
		return []lifecycle.ExemplarySnapshot{}, nil
	}

	selectStmt := c.exemplarySelect().Where(goqu.C(colID).In(uuidsToStrings(ids)))

	return c.queryExemplaries(ctx, selectStmt)
}

// LoadAllExemplaries returns the lifecycle snapshots of every exemplary in the catalog.
func (c Catalog) LoadAllExemplaries(ctx context.Context) ([]lifecycle.ExemplarySnapshot, error) {
	return c.queryExemplaries(ctx, c.exemplarySelect())
}

func (c Catalog) exemplarySelect() *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(c.exemplariesTableName).
		Select(colID, colIdentifier, colInStorage, colShelfID, colReturnToShelfDate).
		Order(goqu.I(colIdentifier).Asc())
}

func (c Catalog) queryExemplaries(
	ctx context.Context,
	selectStmt *goqu.SelectDataset,
) ([]lifecycle.ExemplarySnapshot, error) {

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		buildErr := errors.Join(ErrBuildingQueryFailed, toSQLErr)
		c.logErrorDual(ctx, logMsgBuildQueryFailed, buildErr)

		return nil, buildErr
	}

	rows, err := c.query(ctx, "load_exemplaries", sqlQuery)
	if err != nil {
		return nil, err
	}
	defer c.closeRows(ctx, rows)

	snapshots := make([]lifecycle.ExemplarySnapshot, 0)

	for rows.Next() {
		var (
			idRaw             string
			identifier        string
			inStorage         bool
			shelfIDRaw        sql.NullString
			returnToShelfDate sql.NullTime
		)

		if scanErr := rows.Scan(&idRaw, &identifier, &inStorage, &shelfIDRaw, &returnToShelfDate); scanErr != nil {
			c.logErrorDual(ctx, logMsgScanRowFailed, scanErr)
			return nil, errors.Join(ErrScanningDBRowFailed, scanErr)
		}

		snapshot, buildErr := buildSnapshotFromRow(idRaw, identifier, inStorage, shelfIDRaw, returnToShelfDate)
		if buildErr != nil {
			c.logErrorDual(ctx, logMsgScanRowFailed, buildErr)
			return nil, errors.Join(ErrBuildingSnapshotFailed, buildErr)
		}

		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

func buildSnapshotFromRow(
	idRaw string,
	identifier string,
	inStorage bool,
	shelfIDRaw sql.NullString,
	returnToShelfDate sql.NullTime,
) (lifecycle.ExemplarySnapshot, error) {

	id, idErr := uuid.Parse(idRaw)
	if idErr != nil {
		return lifecycle.ExemplarySnapshot{}, idErr
	}

	shelfID := uuid.Nil
	if shelfIDRaw.Valid {
		parsed, shelfErr := uuid.Parse(shelfIDRaw.String)
		if shelfErr != nil {
			return lifecycle.ExemplarySnapshot{}, shelfErr
		}

		shelfID = parsed
	}

	var rtsd time.Time
	if returnToShelfDate.Valid {
		rtsd = returnToShelfDate.Time
	}

	return lifecycle.BuildExemplarySnapshot(id, identifier, inStorage, shelfID, rtsd)
}

// LoadShelf returns the shelf with the given id, or nil when it does not exist.
func (c Catalog) LoadShelf(ctx context.Context, id uuid.UUID) (*Shelf, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(c.shelvesTableName).
		Select(colID, colRoomID, colNumber).
		Where(goqu.C(colID).Eq(id.String()))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, err := c.query(ctx, "load_shelf", sqlQuery)
	if err != nil {
		return nil, err
	}
	defer c.closeRows(ctx, rows)

	if !rows.Next() {
		return nil, nil
	}

	var (
		idRaw     string
		roomIDRaw string
		number    int
	)

	if scanErr := rows.Scan(&idRaw, &roomIDRaw, &number); scanErr != nil {
		c.logErrorDual(ctx, logMsgScanRowFailed, scanErr)
		return nil, errors.Join(ErrScanningDBRowFailed, scanErr)
	}

	shelfID, idErr := uuid.Parse(idRaw)
	if idErr != nil {
		return nil, errors.Join(ErrScanningDBRowFailed, idErr)
	}

	roomID, roomErr := uuid.Parse(roomIDRaw)
	if roomErr != nil {
		return nil, errors.Join(ErrScanningDBRowFailed, roomErr)
	}

	return &Shelf{ID: shelfID, RoomID: roomID, Number: number}, nil
}

// LoadBooks returns the books with the given ids. Unknown ids are simply
// absent from the result.
func (c Catalog) LoadBooks(ctx context.Context, ids []uuid.UUID) ([]Book, error) {
	if len(ids) == 0 {
		return []Book{}, nil
	}

	selectStmt := goqu.Dialect(dialectPostgres).
		From(c.booksTableName).
		Select(colID, colTitle, colAuthor, colGenre, colPublicationYear).
		Where(goqu.C(colID).In(uuidsToStrings(ids)))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, err := c.query(ctx, "load_books", sqlQuery)
	if err != nil {
		return nil, err
	}
	defer c.closeRows(ctx, rows)

	books := make([]Book, 0, len(ids))

	for rows.Next() {
		var (
			idRaw string
			book  Book
		)

		if scanErr := rows.Scan(&idRaw, &book.Title, &book.Author, &book.Genre, &book.PublicationYear); scanErr != nil {
			c.logErrorDual(ctx, logMsgScanRowFailed, scanErr)
			return nil, errors.Join(ErrScanningDBRowFailed, scanErr)
		}

		bookID, idErr := uuid.Parse(idRaw)
		if idErr != nil {
			return nil, errors.Join(ErrScanningDBRowFailed, idErr)
		}

		book.ID = bookID
		books = append(books, book)
	}

	return books, nil
}

// InsertExemplaries creates the given exemplaries in one statement.
func (c Catalog) InsertExemplaries(ctx context.Context, exemplaries []NewExemplary) error {
	if len(exemplaries) == 0 {
		return ErrNoExemplaryIDs
	}

	records := make([]goqu.Record, 0, len(exemplaries))
	for _, exemplary := range exemplaries {
		record := goqu.Record{
			colID:              exemplary.ID.String(),
			colIdentifier:      exemplary.Identifier,
			colBookID:          exemplary.BookID.String(),
			colAcquisitionDate: exemplary.AcquisitionDate.Format(dateLayout),
			colPriceCents:      exemplary.PriceCents,
			colInStorage:       exemplary.InStorage,
			colShelfID:         nil,
		}

		if exemplary.ShelfID != uuid.Nil {
			record[colShelfID] = exemplary.ShelfID.String()
		}

		records = append(records, record)
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(c.exemplariesTableName).
		Rows(records)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	_, err := c.exec(ctx, "insert_exemplaries", sqlQuery)

	return err
}

// InsertShelves creates the given shelves in one statement.
func (c Catalog) InsertShelves(ctx context.Context, shelves []Shelf) error {
	if len(shelves) == 0 {
		return ErrNilShelfID
	}

	records := make([]goqu.Record, 0, len(shelves))
	for _, shelf := range shelves {
		records = append(records, goqu.Record{
			colID:     shelf.ID.String(),
			colRoomID: shelf.RoomID.String(),
			colNumber: shelf.Number,
		})
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(c.shelvesTableName).
		Rows(records)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	_, err := c.exec(ctx, "insert_shelves", sqlQuery)

	return err
}

// PlaceOnShelf moves the given exemplaries onto a shelf and clears their
// storage flag. Returns ErrExemplariesNotFound when the statement matched
// fewer rows than exemplaries addressed.
func (c Catalog) PlaceOnShelf(ctx context.Context, ids []uuid.UUID, shelfID uuid.UUID) error {
	return c.updateExemplaries(ctx, "place_on_shelf", ids, goqu.Record{
		colShelfID:   shelfID.String(),
		colInStorage: false,
	})
}

// MoveToStorage moves the given exemplaries into storage: the storage flag is
// set and the shelf location cleared, keeping the storage invariant intact.
func (c Catalog) MoveToStorage(ctx context.Context, ids []uuid.UUID) error {
	return c.updateExemplaries(ctx, "move_to_storage", ids, goqu.Record{
		colInStorage: true,
		colShelfID:   nil,
	})
}

// StampReturnToShelf records the explicit return-to-shelf action that ends an
// exemplary's time in the quarantine area.
func (c Catalog) StampReturnToShelf(ctx context.Context, ids []uuid.UUID, date time.Time) error {
	return c.updateExemplaries(ctx, "stamp_return_to_shelf", ids, goqu.Record{
		colReturnToShelfDate: lifecycle.ToLedgerDate(date).Format(dateLayout),
	})
}

// ClearReturnToShelfDate resets the return-to-shelf date, which happens when
// an exemplary is borrowed and a fresh quarantine cycle starts on its return.
func (c Catalog) ClearReturnToShelfDate(ctx context.Context, ids []uuid.UUID) error {
	return c.updateExemplaries(ctx, "clear_return_to_shelf_date", ids, goqu.Record{
		colReturnToShelfDate: nil,
	})
}

func (c Catalog) updateExemplaries(
	ctx context.Context,
	operation string,
	ids []uuid.UUID,
	record goqu.Record,
) error {

	if len(ids) == 0 {
		return ErrNoExemplaryIDs
	}

	updateStmt := goqu.Dialect(dialectPostgres).
		Update(c.exemplariesTableName).
		Set(record).
		Where(goqu.C(colID).In(uuidsToStrings(ids)))

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, err := c.exec(ctx, operation, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected != int64(len(ids)) {
		return ErrExemplariesNotFound
	}

	return nil
}

// ReparentExemplaries moves every exemplary of the duplicate books to the
// surviving book and returns how many were re-parented.
func (c Catalog) ReparentExemplaries(
	ctx context.Context,
	duplicateBookIDs []uuid.UUID,
	survivorID uuid.UUID,
) (int64, error) {

	if len(duplicateBookIDs) == 0 {
		return 0, ErrNilBookID
	}

	updateStmt := goqu.Dialect(dialectPostgres).
		Update(c.exemplariesTableName).
		Set(goqu.Record{colBookID: survivorID.String()}).
		Where(goqu.C(colBookID).In(uuidsToStrings(duplicateBookIDs)))

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		return 0, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return c.exec(ctx, "reparent_exemplaries", sqlQuery)
}

// DeleteBooks removes the given book records.
func (c Catalog) DeleteBooks(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return ErrNilBookID
	}

	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(c.booksTableName).
		Where(goqu.C(colID).In(uuidsToStrings(ids)))

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	_, err := c.exec(ctx, "delete_books", sqlQuery)

	return err
}

func (c Catalog) query(ctx context.Context, operation string, sqlQuery string) (adapters.DBRows, error) {
	start := time.Now()
	rows, queryErr := c.db.Query(ctx, sqlQuery)
	c.logQueryDual(ctx, operation, sqlQuery, time.Since(start))

	if queryErr != nil {
		c.logErrorDual(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, errors.Join(ErrQueryingCatalogFailed, queryErr)
	}

	return rows, nil
}

func (c Catalog) exec(ctx context.Context, operation string, sqlQuery string) (int64, error) {
	start := time.Now()
	result, execErr := c.db.Exec(ctx, sqlQuery)
	c.logQueryDual(ctx, operation, sqlQuery, time.Since(start))

	if execErr != nil {
		c.logErrorDual(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		return 0, errors.Join(ErrWritingCatalogFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		return 0, errors.Join(ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}

func (c Catalog) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		c.logWarnDual(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

func uuidsToStrings(ids []uuid.UUID) []string {
	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		strs = append(strs, id.String())
	}

	return strs
}
