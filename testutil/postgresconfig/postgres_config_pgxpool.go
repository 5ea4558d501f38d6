package postgresconfig

import (
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func pgxPoolConfig(dsn string, maxConns, minConns int32) *pgxpool.Config {
	const defaultMaxConnLifetime = time.Hour
	const defaultMaxConnIdleTime = time.Minute * 5
	const defaultHealthCheckPeriod = time.Minute
	const defaultConnectTimeout = time.Second * 5

	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Fatal("Failed to create a config, error: ", err)
	}

	dbConfig.MaxConns = maxConns
	dbConfig.MinConns = minConns
	dbConfig.MaxConnLifetime = defaultMaxConnLifetime
	dbConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	dbConfig.HealthCheckPeriod = defaultHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout

	return dbConfig
}

// PGXPoolSingleConfig creates a pgxpool.Config for the single test database.
func PGXPoolSingleConfig() *pgxpool.Config {
	return pgxPoolConfig(SingleDSN(), 50, 10)
}

// PGXPoolPrimaryConfig creates a pgxpool.Config for the primary node.
func PGXPoolPrimaryConfig() *pgxpool.Config {
	return pgxPoolConfig(PrimaryDSN(), 60, 2)
}

// PGXPoolReplicaConfig creates a pgxpool.Config for the replica node.
func PGXPoolReplicaConfig() *pgxpool.Config {
	return pgxPoolConfig(ReplicaDSN(), 60, 2)
}
