package testutils

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// IntegrationEnv must be set for tests that start a database container.
const IntegrationEnv = "LEAGUESYNC_INTEGRATION"

const (
	dbImage    = "postgres:16.3-alpine"
	dbName     = "leaguesync"
	dbUser     = "leaguesync"
	dbPassword = "secret"
)

// IntegrationEnabled reports whether container-backed tests should run.
func IntegrationEnabled() bool {
	return os.Getenv(IntegrationEnv) != ""
}

type DBContainer struct {
	container *postgres.PostgresContainer
}

// NewDBContainer starts an empty PostgreSQL; the caller applies the schema.
func NewDBContainer(ctx context.Context) (*DBContainer, error) {
	container, err := postgres.Run(ctx, dbImage,
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}
	return &DBContainer{container: container}, nil
}

func (c *DBContainer) Shutdown() error {
	return c.container.Terminate(context.Background())
}

func (c *DBContainer) ConnectionString(ctx context.Context) (string, error) {
	// the container is not configured for TLS
	return c.container.ConnectionString(ctx, "sslmode=disable")
}
