package postgresledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/mediatheque/exemplary-lifecycle-go/lifecycle"
)

const (
	operationSearchExemplaries = "search_exemplaries"

	colID                = "id"
	colInStorage         = "in_storage"
	colShelfID           = "shelf_id"
	colReturnToShelfDate = "return_to_shelf_date"

	exemplariesAlias = "e"
)

// SearchExemplaryIDs returns the ids of all exemplaries whose derived state
// matches the predicate, pushed down to a single SQL query instead of
// evaluating the whole catalog in memory.
//
// The quarantine cutoff is computed in Go from today and the policy, so the
// query only compares dates. Negated predicates wrap the whole field
// expression in NOT, which matches the boolean collapse of Predicate.Wanted.
func (l CheckoutLedger) SearchExemplaryIDs(
	ctx context.Context,
	predicate lifecycle.Predicate,
	today time.Time,
	policy lifecycle.Policy,
) ([]uuid.UUID, error) {

	observation, ctx := l.beginOperation(ctx, operationSearchExemplaries)

	sqlQuery, buildErr := l.buildSearchQuery(predicate, today, policy)
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

		return nil, errors.Join(ErrSearchingExemplariesFailed, queryErr)
	}
	defer l.closeRows(ctx, rows)

	ids := make([]uuid.UUID, 0)

	for rows.Next() {
		var idRaw string

		if scanErr := rows.Scan(&idRaw); scanErr != nil {
			l.logError(logMsgScanRowFailed, scanErr)
			observation.failScan(duration)

			return nil, errors.Join(ErrScanningDBRowFailed, scanErr)
		}

		id, parseErr := uuid.Parse(idRaw)
		if parseErr != nil {
			l.logError(logMsgScanRowFailed, parseErr)
			observation.failScan(duration)

			return nil, errors.Join(ErrScanningDBRowFailed, parseErr)
		}

		ids = append(ids, id)
	}

	observation.readDuration = duration
	observation.succeedRead(len(ids))

	return ids, nil
}

func (l CheckoutLedger) buildSearchQuery(
	predicate lifecycle.Predicate,
	today time.Time,
	policy lifecycle.Policy,
) (sqlQueryString, error) {

	if policyErr := policy.Validate(); policyErr != nil {
		return "", policyErr
	}

	wanted, wantedErr := predicate.Wanted()
	if wantedErr != nil {
		return "", wantedErr
	}

	matchExpr, exprErr := l.derivedFieldExpression(predicate.Field(), today, policy)
	if exprErr != nil {
		return "", exprErr
	}

	whereExpr := goqu.L("(?)", matchExpr)
	if !wanted {
		whereExpr = goqu.L("NOT (?)", matchExpr)
	}

	selectStmt := goqu.Dialect(dialectPostgres).
		From(goqu.T(l.exemplariesTableName).As(exemplariesAlias)).
		Select(goqu.I(exemplariesAlias + "." + colID)).
		Where(whereExpr).
		Order(goqu.I(exemplariesAlias + "." + colID).Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// derivedFieldExpression translates one derived boolean field into the SQL
// condition that holds exactly when the in-memory evaluation would set it.
func (l CheckoutLedger) derivedFieldExpression(
	field lifecycle.DerivedField,
	today time.Time,
	policy lifecycle.Policy,
) (exp.Expression, error) {

	builder := goqu.Dialect(dialectPostgres)
	cutoff := lifecycle.ToLedgerDate(today).AddDate(0, 0, -policy.QuarantineDays).Format(dateLayout)

	exemplaryIDRef := goqu.I(exemplariesAlias + "." + colID)

	openCheckoutStmt := builder.
		From(l.checkoutsTableName).
		Select(goqu.L("1")).
		Where(
			goqu.C(colExemplaryID).Eq(exemplaryIDRef),
			goqu.C(colReturnDate).IsNull(),
		)

	// MAX over no closed checkouts yields NULL, and NULL fails both date
	// comparisons, which is exactly the never-returned case.
	latestReturnStmt := builder.
		From(l.checkoutsTableName).
		Select(goqu.MAX(colReturnDate)).
		Where(goqu.C(colExemplaryID).Eq(exemplaryIDRef))

	notBorrowed := goqu.L("NOT EXISTS ?", openCheckoutStmt)
	inStorage := goqu.I(exemplariesAlias + "." + colInStorage).IsTrue()
	notStored := goqu.I(exemplariesAlias + "." + colInStorage).IsFalse()
	hasLocation := goqu.I(exemplariesAlias + "." + colShelfID).IsNotNull()
	noLocation := goqu.I(exemplariesAlias + "." + colShelfID).IsNull()
	neverReturned := goqu.L("? IS NULL", latestReturnStmt)
	withinQuarantine := goqu.L("? > ?", latestReturnStmt, cutoff)
	pastQuarantine := goqu.L("? <= ?", latestReturnStmt, cutoff)
	reshelved := goqu.I(exemplariesAlias + "." + colReturnToShelfDate).IsNotNull()
	notReshelved := goqu.I(exemplariesAlias + "." + colReturnToShelfDate).IsNull()

	switch field {
	case lifecycle.FieldIsAvailable:
		return goqu.And(
			notBorrowed,
			notStored,
			hasLocation,
			goqu.Or(neverReturned, goqu.And(pastQuarantine, reshelved)),
		), nil

	case lifecycle.FieldIsInQuarantine:
		return goqu.And(notBorrowed, notStored, withinQuarantine), nil

	case lifecycle.FieldIsPastQuarantine:
		return goqu.And(notBorrowed, notStored, pastQuarantine, notReshelved), nil

	case lifecycle.FieldIsInReserve:
		return goqu.And(notBorrowed, goqu.Or(inStorage, goqu.And(neverReturned, noLocation))), nil

	default:
		return nil, fmt.Errorf("%w: %s", lifecycle.ErrUnknownDerivedField, field)
	}
}
