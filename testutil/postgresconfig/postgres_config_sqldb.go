package postgresconfig

import (
	"context"
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

func sqlDBConfig(dsn string, maxOpenConns int) *sql.DB {
	const defaultMaxIdleConnections = 2
	const defaultMaxConnLifetime = time.Hour
	const defaultMaxConnIdleTime = time.Minute * 5

	db, err := sql.Open("postgres", dsn)
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

// SQLDBSingleConfig creates a configured *sql.DB for the single test database.
func SQLDBSingleConfig() *sql.DB {
	return sqlDBConfig(SingleDSN(), 50)
}

// SQLDBPrimaryConfig creates a configured *sql.DB for the primary node.
func SQLDBPrimaryConfig() *sql.DB {
	return sqlDBConfig(PrimaryDSN(), 60)
}

// SQLDBReplicaConfig creates a configured *sql.DB for the replica node.
func SQLDBReplicaConfig() *sql.DB {
	return sqlDBConfig(ReplicaDSN(), 60)
}
