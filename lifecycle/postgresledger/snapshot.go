package postgresledger

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
)

const (
	operationSaveSnapshot   = "save_snapshot"
	operationLoadSnapshot   = "load_snapshot"
	operationDeleteSnapshot = "delete_snapshot"

	colViewType    = "view_type"
	colFingerprint = "fingerprint"
	colEvaluatedAt = "evaluated_at"
	colData        = "data"
	colCreatedAt   = "created_at"

	snapshotConflictTarget = "view_type, fingerprint"
)

// SaveSnapshot persists an evaluation snapshot, replacing any existing
// snapshot for the same view type and fingerprint.
func (l CheckoutLedger) SaveSnapshot(ctx context.Context, snapshot lifecycle.EvaluationSnapshot) error {
	if validateErr := snapshot.Validate(); validateErr != nil {
		return validateErr
	}

	observation, ctx := l.beginOperation(ctx, operationSaveSnapshot)

	sqlQuery, buildErr := l.buildSaveSnapshotQuery(snapshot)
	if buildErr != nil {
		observation.failBuild(buildErr)
		return buildErr
	}

	rowsAffected, execErr := l.execWrite(ctx, observation, sqlQuery, lifecycle.ErrSavingSnapshotFailed)
	if execErr != nil {
		return execErr
	}

	observation.succeedWrite(rowsAffected)

	return nil
}

// LoadSnapshot retrieves the snapshot for the given view type and fingerprint.
// It returns nil without an error when no snapshot exists, so callers can fall
// back to deriving evaluations from the ledger.
func (l CheckoutLedger) LoadSnapshot(
	ctx context.Context,
	viewType string,
	fingerprint string,
) (*lifecycle.EvaluationSnapshot, error) {

	if viewType == "" {
		return nil, lifecycle.ErrEmptyViewType
	}

	if fingerprint == "" {
		return nil, lifecycle.ErrEmptyFingerprint
	}

	observation, ctx := l.beginOperation(ctx, operationLoadSnapshot)

	sqlQuery, buildErr := l.buildLoadSnapshotQuery(viewType, fingerprint)
	if buildErr != nil {
		observation.failBuild(buildErr)
		return nil, buildErr
	}

	start := time.Now()
	rows, queryErr := l.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	l.logQueryWithDurationDual(ctx, sqlQuery, observation.operation, duration)

	if queryErr != nil {
		l.logErrorDual(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		observation.failQuery(duration)

		return nil, errors.Join(lifecycle.ErrLoadingSnapshotFailed, queryErr)
	}
	defer l.closeRows(ctx, rows)

	if !rows.Next() {
		observation.readDuration = duration
		observation.succeedRead(0)

		return nil, nil
	}

	var (
		snapshot    lifecycle.EvaluationSnapshot
		evaluatedAt time.Time
		data        []byte
		createdAt   time.Time
	)

	if scanErr := rows.Scan(&snapshot.ViewType, &snapshot.Fingerprint, &evaluatedAt, &data, &createdAt); scanErr != nil {
		l.logError(logMsgScanRowFailed, scanErr)
		observation.failScan(duration)

		return nil, errors.Join(ErrScanningDBRowFailed, scanErr)
	}

	snapshot.EvaluatedAt = lifecycle.ToLedgerDate(evaluatedAt)
	snapshot.Data = data
	snapshot.CreatedAt = createdAt

	observation.readDuration = duration
	observation.succeedRead(1)

	return &snapshot, nil
}

// DeleteSnapshot removes the snapshot for the given view type and fingerprint.
// Deleting a snapshot that does not exist is not an error.
func (l CheckoutLedger) DeleteSnapshot(ctx context.Context, viewType string, fingerprint string) error {
	if viewType == "" {
		return lifecycle.ErrEmptyViewType
	}

	if fingerprint == "" {
		return lifecycle.ErrEmptyFingerprint
	}

	observation, ctx := l.beginOperation(ctx, operationDeleteSnapshot)

	sqlQuery, buildErr := l.buildDeleteSnapshotQuery(viewType, fingerprint)
	if buildErr != nil {
		observation.failBuild(buildErr)
		return buildErr
	}

	rowsAffected, execErr := l.execWrite(ctx, observation, sqlQuery, lifecycle.ErrDeletingSnapshotFailed)
	if execErr != nil {
		return execErr
	}

	observation.succeedWrite(rowsAffected)

	return nil
}

func (l CheckoutLedger) buildSaveSnapshotQuery(snapshot lifecycle.EvaluationSnapshot) (sqlQueryString, error) {
	evaluatedAt := snapshot.EvaluatedAt.Format(dateLayout)
	createdAt := snapshot.CreatedAt.UTC().Format(time.RFC3339Nano)

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(l.snapshotsTableName).
		Rows(goqu.Record{
			colViewType:    snapshot.ViewType,
			colFingerprint: snapshot.Fingerprint,
			colEvaluatedAt: evaluatedAt,
			colData:        string(snapshot.Data),
			colCreatedAt:   createdAt,
		}).
		OnConflict(goqu.DoUpdate(
			snapshotConflictTarget,
			goqu.Record{
				colEvaluatedAt: evaluatedAt,
				colData:        string(snapshot.Data),
				colCreatedAt:   createdAt,
			},
		))

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (l CheckoutLedger) buildLoadSnapshotQuery(viewType, fingerprint string) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(l.snapshotsTableName).
		Select(colViewType, colFingerprint, colEvaluatedAt, colData, colCreatedAt).
		Where(
			goqu.C(colViewType).Eq(viewType),
			goqu.C(colFingerprint).Eq(fingerprint),
		)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (l CheckoutLedger) buildDeleteSnapshotQuery(viewType, fingerprint string) (sqlQueryString, error) {
	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(l.snapshotsTableName).
		Where(
			goqu.C(colViewType).Eq(viewType),
			goqu.C(colFingerprint).Eq(fingerprint),
		)

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}
