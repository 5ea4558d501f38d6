package postgresconfig

import (
	"context"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

func sqlxConfig(dsn string, maxOpenConns int) *sqlx.DB {
	const defaultMaxIdleConnections = 2
	const defaultMaxConnLifetime = time.Hour
	const defaultMaxConnIdleTime = time.Minute * 5

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		log.Fatal("Failed to open database connection, error: ", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConnections)
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)

	if pingErr := db.PingContext(context.Background()); pingErr != nil {
		log.Fatal("Failed to ping database, error: ", pingErr)
	}

	return db
}

// SQLXSingleConfig creates a configured *sqlx.DB for the single test database.
func SQLXSingleConfig() *sqlx.DB {
	return sqlxConfig(SingleDSN(), 50)
}

// SQLXPrimaryConfig creates a configured *sqlx.DB for the primary node.
func SQLXPrimaryConfig() *sqlx.DB {
	return sqlxConfig(PrimaryDSN(), 60)
}

// SQLXReplicaConfig creates a configured *sqlx.DB for the replica node.
func SQLXReplicaConfig() *sqlx.DB {
	return sqlxConfig(ReplicaDSN(), 60)
}
