// Package postgresconfig provides Postgres connection configurations for
// integration tests, in the three flavors the ledger and catalog accept:
// pgxpool, database/sql, and sqlx.
package postgresconfig
