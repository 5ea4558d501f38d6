package postgresledger

import (
	"context"
	"database/sql"
	"errors"
	"strings"
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
	defaultCheckoutsTableName   = "checkouts"
	defaultExemplariesTableName = "exemplaries"
	defaultSnapshotsTableName   = "evaluation_snapshots"

	dialectPostgres = "postgres"
	dateLayout      = "2006-01-02"

	colExemplaryID  = "exemplary_id"
	colUserID       = "user_id"
	colCheckoutDate = "checkout_date"
	colReturnDate   = "return_date"

	logMsgBuildQueryFailed     = "failed to build sql query"
	logMsgDBQueryFailed        = "database query execution failed"
	logMsgCloseRowsFailed      = "failed to close database rows"
	logMsgScanRowFailed        = "failed to scan database row"
	logMsgBuildRecordFailed    = "failed to build checkout record from database row"
	logMsgDBExecFailed         = "database execution failed"
	logMsgRowsAffectedFailed   = "failed to get rows affected count"
	logMsgBorrowConflict       = "borrow rejected, an open checkout already exists"
	logMsgReturnConflict       = "return rejected, no open checkout exists"
	logMsgMultipleRowsClosed   = "a return closed more open checkouts than exemplaries"
	logMsgSQLExecuted          = "executed sql for: "
	logMsgOperation            = "checkout ledger operation: "
	logAttrError               = "error"
	logAttrQuery               = "query"
	logAttrExemplaryID         = "exemplary_id"
	logAttrExemplaryIDs        = "exemplary_ids"
	logAttrRecordCount         = "record_count"
	logAttrRowsAffected        = "rows_affected"
	logAttrDurationMS          = "duration_ms"

	operationListOpen         = "list_open"
	operationListLatestClosed = "list_latest_closed"
	operationOpenCheckouts    = "open_checkouts"
	operationCloseCheckouts   = "close_checkouts"
)

type (
	sqlQueryString = string
)

// CheckoutLedger is the PostgreSQL checkout ledger.
//
// It implements lifecycle.CheckoutLedger for the engine's reads and owns the
// write path for borrows and returns. It leverages a database adapter and
// supports customizable table names and pluggable observability.
type CheckoutLedger struct {
	db                   adapters.DBAdapter
	checkoutsTableName   string
	exemplariesTableName string
	snapshotsTableName   string
	logger               Logger
	contextualLogger     ContextualLogger
	metricsCollector     MetricsCollector
	tracingCollector     TracingCollector
}

// NewCheckoutLedgerFromPGXPool creates a new CheckoutLedger using a pgx Pool with optional configuration.
func NewCheckoutLedgerFromPGXPool(db *pgxpool.Pool, options ...Option) (CheckoutLedger, error) {
	if db == nil {
		return CheckoutLedger{}, ErrNilDatabaseConnection
	}

	return newCheckoutLedger(adapters.NewPGXAdapter(db), options...)
}

// NewCheckoutLedgerFromPGXPoolAndReplica creates a new CheckoutLedger using a primary
// pgx Pool for writes and a replica pool for ledger reads.
func NewCheckoutLedgerFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (CheckoutLedger, error) {
	if db == nil || replica == nil {
		return CheckoutLedger{}, ErrNilDatabaseConnection
	}

	return newCheckoutLedger(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewCheckoutLedgerFromSQLDB creates a new CheckoutLedger using a sql.DB with optional configuration.
func NewCheckoutLedgerFromSQLDB(db *sql.DB, options ...Option) (CheckoutLedger, error) {
	if db == nil {
		return CheckoutLedger{}, ErrNilDatabaseConnection
	}

	return newCheckoutLedger(adapters.NewSQLAdapter(db), options...)
}

// NewCheckoutLedgerFromSQLX creates a new CheckoutLedger using a sqlx.DB with optional configuration.
func NewCheckoutLedgerFromSQLX(db *sqlx.DB, options ...Option) (CheckoutLedger, error) {
	if db == nil {
		return CheckoutLedger{}, ErrNilDatabaseConnection
	}

	return newCheckoutLedger(adapters.NewSQLXAdapter(db), options...)
}

func newCheckoutLedger(db adapters.DBAdapter, options ...Option) (CheckoutLedger, error) {
	ledger := CheckoutLedger{
		db:                   db,
		checkoutsTableName:   defaultCheckoutsTableName,
		exemplariesTableName: defaultExemplariesTableName,
		snapshotsTableName:   defaultSnapshotsTableName,
	}

	for _, option := range options {
		if err := option(&ledger); err != nil {
			return CheckoutLedger{}, err
		}
	}

	return ledger, nil
}

// ListOpen returns every open checkout for the given exemplaries with a single query.
func (l CheckoutLedger) ListOpen(ctx context.Context, exemplaryIDs []uuid.UUID) ([]lifecycle.CheckoutRecord, error) {
	observation, ctx := l.beginOperation(ctx, operationListOpen)

	sqlQuery, buildErr := l.buildListOpenQuery(exemplaryIDs)
	if buildErr != nil {
		observation.failBuild(buildErr)
		return nil, buildErr
	}

	records, err := l.queryCheckoutRows(ctx, observation, sqlQuery, l.scanOpenCheckoutRow)
	if err != nil {
		return nil, err
	}

	observation.succeedRead(len(records))

	return records, nil
}

// ListLatestClosed returns, per exemplary, the most recently closed checkout,
// resolved in SQL with DISTINCT ON. One query regardless of batch size.
func (l CheckoutLedger) ListLatestClosed(
	ctx context.Context,
	exemplaryIDs []uuid.UUID,
) (map[uuid.UUID]lifecycle.CheckoutRecord, error) {

	observation, ctx := l.beginOperation(ctx, operationListLatestClosed)

	sqlQuery, buildErr := l.buildListLatestClosedQuery(exemplaryIDs)
	if buildErr != nil {
		observation.failBuild(buildErr)
		return nil, buildErr
	}

	records, err := l.queryCheckoutRows(ctx, observation, sqlQuery, l.scanClosedCheckoutRow)
	if err != nil {
		return nil, err
	}

	latestClosed := make(map[uuid.UUID]lifecycle.CheckoutRecord, len(records))
	for _, record := range records {
		latestClosed[record.ExemplaryID] = record
	}

	observation.succeedRead(len(latestClosed))

	return latestClosed, nil
}

// OpenCheckouts records a borrow for the whole batch of exemplaries.
//
// Exclusivity is enforced at write time: every inserted row carries the same
// guard over the whole batch, so the single statement inserts either all
// checkouts or none. A rows affected count of zero means some exemplary in the
// batch already has an open checkout and the borrow is rejected with
// lifecycle.ErrExemplaryAlreadyBorrowed. Because the write is one statement,
// a failed borrow never leaves a batch half-applied.
func (l CheckoutLedger) OpenCheckouts(
	ctx context.Context,
	exemplaryIDs []uuid.UUID,
	userID uuid.UUID,
	checkoutDate time.Time,
) error {

	if len(exemplaryIDs) == 0 {
		return ErrNoExemplaryIDs
	}

	records := make([]lifecycle.CheckoutRecord, 0, len(exemplaryIDs))

	for _, exemplaryID := range exemplaryIDs {
		record, buildRecordErr := lifecycle.BuildOpenCheckout(exemplaryID, userID, checkoutDate)
		if buildRecordErr != nil {
			return buildRecordErr
		}

		records = append(records, record)
	}

	observation, ctx := l.beginOperation(ctx, operationOpenCheckouts)

	sqlQuery, buildErr := l.buildOpenCheckoutsQuery(records)
	if buildErr != nil {
		observation.failBuild(buildErr)
		return buildErr
	}

	rowsAffected, execErr := l.execWrite(ctx, observation, sqlQuery, ErrOpeningCheckoutFailed)
	if execErr != nil {
		return execErr
	}

	if rowsAffected == 0 {
		l.logOperationDual(ctx, logMsgBorrowConflict,
			logAttrExemplaryIDs, joinIDs(exemplaryIDs))
		observation.failConflict(conflictTypeBorrow)

		return lifecycle.ErrExemplaryAlreadyBorrowed
	}

	observation.succeedWrite(rowsAffected)

	return nil
}

// CloseCheckouts records a return for the open checkouts of the whole batch
// of exemplaries in one statement.
//
// The update is guarded on open checkouts existing: a rows affected count of
// zero means nothing was open and the return is rejected with
// lifecycle.ErrNoOpenCheckout.
func (l CheckoutLedger) CloseCheckouts(ctx context.Context, exemplaryIDs []uuid.UUID, returnDate time.Time) error {
	if len(exemplaryIDs) == 0 {
		return ErrNoExemplaryIDs
	}

	for _, exemplaryID := range exemplaryIDs {
		if exemplaryID == uuid.Nil {
			return lifecycle.ErrNilExemplaryID
		}
	}

	if returnDate.IsZero() {
		return ErrZeroReturnDate
	}

	observation, ctx := l.beginOperation(ctx, operationCloseCheckouts)

	sqlQuery, buildErr := l.buildCloseCheckoutsQuery(exemplaryIDs, returnDate)
	if buildErr != nil {
		observation.failBuild(buildErr)
		return buildErr
	}

	rowsAffected, execErr := l.execWrite(ctx, observation, sqlQuery, ErrClosingCheckoutFailed)
	if execErr != nil {
		return execErr
	}

	if rowsAffected == 0 {
		l.logOperationDual(ctx, logMsgReturnConflict,
			logAttrExemplaryIDs, joinIDs(exemplaryIDs))
		observation.failConflict(conflictTypeReturn)

		return lifecycle.ErrNoOpenCheckout
	}

	// A well-formed ledger holds at most one open checkout per exemplary, so
	// closing more rows than exemplaries is an inconsistency worth reporting.
	if rowsAffected > int64(len(exemplaryIDs)) {
		l.logWarnDual(ctx, logMsgMultipleRowsClosed,
			logAttrExemplaryIDs, joinIDs(exemplaryIDs),
			logAttrRowsAffected, rowsAffected)
	}

	observation.succeedWrite(rowsAffected)

	return nil
}

func (l CheckoutLedger) buildListOpenQuery(exemplaryIDs []uuid.UUID) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(l.checkoutsTableName).
		Select(colExemplaryID, colUserID, colCheckoutDate).
		Where(
			goqu.C(colExemplaryID).In(uuidsToStrings(exemplaryIDs)),
			goqu.C(colReturnDate).IsNull(),
		).
		Order(goqu.I(colExemplaryID).Asc(), goqu.I(colCheckoutDate).Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (l CheckoutLedger) buildListLatestClosedQuery(exemplaryIDs []uuid.UUID) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(l.checkoutsTableName).
		Select(colExemplaryID, colUserID, colCheckoutDate, colReturnDate).
		Distinct(colExemplaryID).
		Where(
			goqu.C(colExemplaryID).In(uuidsToStrings(exemplaryIDs)),
			goqu.C(colReturnDate).IsNotNull(),
		).
		Order(
			goqu.I(colExemplaryID).Asc(),
			goqu.I(colReturnDate).Desc(),
			goqu.I(colCheckoutDate).Desc(),
		)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (l CheckoutLedger) buildOpenCheckoutsQuery(records []lifecycle.CheckoutRecord) (sqlQueryString, error) {
	builder := goqu.Dialect(dialectPostgres)

	exemplaryIDs := make([]string, 0, len(records))
	for _, record := range records {
		exemplaryIDs = append(exemplaryIDs, record.ExemplaryID.String())
	}

	openExistsStmt := builder.
		From(l.checkoutsTableName).
		Select(goqu.L("1")).
		Where(
			goqu.C(colExemplaryID).In(exemplaryIDs),
			goqu.C(colReturnDate).IsNull(),
		)

	// Every row carries the same guard over the whole batch, and the guard and
	// the insert run in one statement: the borrow inserts all checkouts or
	// none, and two concurrent borrows cannot both pass the existence check.
	rowStmt := func(record lifecycle.CheckoutRecord) *goqu.SelectDataset {
		return builder.
			Select(
				goqu.V(record.ExemplaryID.String()),
				goqu.V(record.UserID.String()),
				goqu.V(record.CheckoutDate.Format(dateLayout)),
			).
			Where(goqu.L("NOT EXISTS ?", openExistsStmt))
	}

	selectStmt := rowStmt(records[0])
	for _, record := range records[1:] {
		selectStmt = selectStmt.UnionAll(rowStmt(record))
	}

	insertStmt := builder.
		Insert(l.checkoutsTableName).
		Cols(colExemplaryID, colUserID, colCheckoutDate).
		FromQuery(selectStmt)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (l CheckoutLedger) buildCloseCheckoutsQuery(exemplaryIDs []uuid.UUID, returnDate time.Time) (sqlQueryString, error) {
	updateStmt := goqu.Dialect(dialectPostgres).
		Update(l.checkoutsTableName).
		Set(goqu.Record{colReturnDate: lifecycle.ToLedgerDate(returnDate).Format(dateLayout)}).
		Where(
			goqu.C(colExemplaryID).In(uuidsToStrings(exemplaryIDs)),
			goqu.C(colReturnDate).IsNull(),
		)

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

type rowScanFunc func(rows adapters.DBRows) (lifecycle.CheckoutRecord, error)

// queryCheckoutRows executes a ledger read and scans every row with the given scanner.
func (l CheckoutLedger) queryCheckoutRows(
	ctx context.Context,
	observation *ledgerObservation,
	sqlQuery sqlQueryString,
	scanRow rowScanFunc,
) ([]lifecycle.CheckoutRecord, error) {

	start := time.Now()
	rows, queryErr := l.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	l.logQueryWithDurationDual(ctx, sqlQuery, observation.operation, duration)

	if queryErr != nil {
		l.logErrorDual(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		observation.failQuery(duration)

		return nil, errors.Join(ErrQueryingCheckoutsFailed, queryErr)
	}
	defer l.closeRows(ctx, rows)

	records := make([]lifecycle.CheckoutRecord, 0)

	for rows.Next() {
		record, scanErr := scanRow(rows)
		if scanErr != nil {
			observation.failScan(duration)
			return nil, scanErr
		}

		records = append(records, record)
	}

	observation.readDuration = duration

	return records, nil
}

func (l CheckoutLedger) scanOpenCheckoutRow(rows adapters.DBRows) (lifecycle.CheckoutRecord, error) {
	var (
		exemplaryIDRaw string
		userIDRaw      string
		checkoutDate   time.Time
	)

	if scanErr := rows.Scan(&exemplaryIDRaw, &userIDRaw, &checkoutDate); scanErr != nil {
		l.logError(logMsgScanRowFailed, scanErr)
		return lifecycle.CheckoutRecord{}, errors.Join(ErrScanningDBRowFailed, scanErr)
	}

	exemplaryID, userID, parseErr := parseCheckoutIDs(exemplaryIDRaw, userIDRaw)
	if parseErr != nil {
		l.logError(logMsgBuildRecordFailed, parseErr)
		return lifecycle.CheckoutRecord{}, errors.Join(ErrBuildingCheckoutRecordFailed, parseErr)
	}

	record, buildErr := lifecycle.BuildOpenCheckout(exemplaryID, userID, checkoutDate)
	if buildErr != nil {
		l.logError(logMsgBuildRecordFailed, buildErr, logAttrExemplaryID, exemplaryIDRaw)
		return lifecycle.CheckoutRecord{}, errors.Join(ErrBuildingCheckoutRecordFailed, buildErr)
	}

	return record, nil
}

func (l CheckoutLedger) scanClosedCheckoutRow(rows adapters.DBRows) (lifecycle.CheckoutRecord, error) {
	var (
		exemplaryIDRaw string
		userIDRaw      string
		checkoutDate   time.Time
		returnDate     time.Time
	)

	if scanErr := rows.Scan(&exemplaryIDRaw, &userIDRaw, &checkoutDate, &returnDate); scanErr != nil {
		l.logError(logMsgScanRowFailed, scanErr)
		return lifecycle.CheckoutRecord{}, errors.Join(ErrScanningDBRowFailed, scanErr)
	}

	exemplaryID, userID, parseErr := parseCheckoutIDs(exemplaryIDRaw, userIDRaw)
	if parseErr != nil {
		l.logError(logMsgBuildRecordFailed, parseErr)
		return lifecycle.CheckoutRecord{}, errors.Join(ErrBuildingCheckoutRecordFailed, parseErr)
	}

	record, buildErr := lifecycle.BuildClosedCheckout(exemplaryID, userID, checkoutDate, returnDate)
	if buildErr != nil {
		l.logError(logMsgBuildRecordFailed, buildErr, logAttrExemplaryID, exemplaryIDRaw)
		return lifecycle.CheckoutRecord{}, errors.Join(ErrBuildingCheckoutRecordFailed, buildErr)
	}

	return record, nil
}

// execWrite executes a write statement and returns the rows affected count.
func (l CheckoutLedger) execWrite(
	ctx context.Context,
	observation *ledgerObservation,
	sqlQuery sqlQueryString,
	wrapErr error,
) (int64, error) {

	start := time.Now()
	result, execErr := l.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	l.logQueryWithDurationDual(ctx, sqlQuery, observation.operation, duration)

	if execErr != nil {
		l.logErrorDual(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		observation.failExec(duration)

		return 0, errors.Join(wrapErr, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		l.logErrorDual(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		observation.failExec(duration)

		return 0, errors.Join(ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	observation.writeDuration = duration

	return rowsAffected, nil
}

// closeRows safely closes database rows and logs any errors.
func (l CheckoutLedger) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		l.logWarnDual(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

func joinIDs(ids []uuid.UUID) string {
	return strings.Join(uuidsToStrings(ids), ",")
}

func uuidsToStrings(ids []uuid.UUID) []string {
	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		strs = append(strs, id.String())
	}

	return strs
}

func parseCheckoutIDs(exemplaryIDRaw, userIDRaw string) (uuid.UUID, uuid.UUID, error) {
	exemplaryID, exemplaryErr := uuid.Parse(exemplaryIDRaw)
	if exemplaryErr != nil {
		return uuid.Nil, uuid.Nil, exemplaryErr
	}

	userID, userErr := uuid.Parse(userIDRaw)
	if userErr != nil {
		return uuid.Nil, uuid.Nil, userErr
	}

	return exemplaryID, userID, nil
}

// Compile-time check to ensure CheckoutLedger implements the engine's read interface.
var _ lifecycle.CheckoutLedger = CheckoutLedger{}
