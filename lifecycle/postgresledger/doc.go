// Package postgresledger provides a PostgreSQL implementation of the checkout ledger.
//
// This package stores the full checkout history in a single checkouts table and
// answers the lifecycle engine's batched reads with one query each, regardless
// of batch size. It supports multiple database adapters (pgx, sql.DB, sqlx)
// and enforces borrow exclusivity at write time with a conditional insert.
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX), optional read replica
//   - Batched ListOpen / ListLatestClosed reads (one query per call)
//   - Write-time borrow exclusivity via conditional INSERT, detected by rows affected
//   - Guarded UPDATE for returns, rejecting returns without an open checkout
//   - Derived-state predicate search pushed down to SQL
//   - Evaluation snapshot persistence for cached read models
//   - Configurable table names and pluggable observability
//
// Expected schema:
//
//	CREATE TABLE checkouts (
//	    id            BIGSERIAL PRIMARY KEY,
//	    exemplary_id  UUID NOT NULL,
//	    user_id       UUID NOT NULL,
//	    checkout_date DATE NOT NULL,
//	    return_date   DATE NULL
//	);
//	CREATE INDEX checkouts_open_idx ON checkouts (exemplary_id) WHERE return_date IS NULL;
//	CREATE INDEX checkouts_closed_idx ON checkouts (exemplary_id, return_date DESC) WHERE return_date IS NOT NULL;
//
//	CREATE TABLE evaluation_snapshots (
//	    view_type    TEXT NOT NULL,
//	    fingerprint  TEXT NOT NULL,
//	    evaluated_at DATE NOT NULL,
//	    data         JSONB NOT NULL,
//	    created_at   TIMESTAMP WITH TIME ZONE NOT NULL,
//	    PRIMARY KEY (view_type, fingerprint)
//	);
//
// Usage examples:
//
//	// Basic usage
//	db, _ := pgxpool.New(context.Background(), dsn)
//	ledger, _ := postgresledger.NewCheckoutLedgerFromPGXPool(db)
//
//	// With operational logging and custom table name
//	ledger, _ := postgresledger.NewCheckoutLedgerFromPGXPool(
//		db,
//		postgresledger.WithCheckoutsTableName("library_checkouts"),
//		postgresledger.WithLogger(logger),
//	)
//
//	engine, _ := lifecycle.NewEngine(ledger)
package postgresledger
