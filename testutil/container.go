package testutil

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// ResolveDSN returns the database URL integration tests should use.
//
// TEST_DATABASE_URL wins when set. Otherwise, if TEST_USE_CONTAINERS=1, a
// throwaway Postgres container is started and TEST_DATABASE_URL is exported
// so NewPool and NewSQLDB pick it up. An empty DSN means "no database": the
// caller should run its tests anyway and let them skip.
//
// The returned cleanup func is never nil.
func ResolveDSN(ctx context.Context) (string, func(), error) {
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		return dsn, func() {}, nil
	}
	if os.Getenv("TEST_USE_CONTAINERS") != "1" {
		return "", func() {}, nil
	}

	dsn, terminate, err := StartPostgres(ctx)
	if err != nil {
		return "", func() {}, err
	}
	if err := os.Setenv("TEST_DATABASE_URL", dsn); err != nil {
		terminate()
		return "", func() {}, fmt.Errorf("testutil.ResolveDSN: export dsn: %w", err)
	}
	return dsn, terminate, nil
}

// StartPostgres boots a postgres:16-alpine container and returns its DSN and
// a func that terminates it.
func StartPostgres(ctx context.Context) (string, func(), error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "timekeeper_test",
			"POSTGRES_USER":     "timekeeper",
			"POSTGRES_PASSWORD": "timekeeper",
		},
		// Postgres logs the ready line twice: once for the init server and
		// once for the real one.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(90 * time.Second),
	}

	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", nil, fmt.Errorf("testutil.StartPostgres: start container: %w", err)
	}
	terminate := func() { _ = pg.Terminate(context.Background()) }

	host, err := pg.Host(ctx)
	if err != nil {
		terminate()
		return "", nil, fmt.Errorf("testutil.StartPostgres: host: %w", err)
	}
	port, err := pg.MappedPort(ctx, "5432/tcp")
	if err != nil {
		terminate()
		return "", nil, fmt.Errorf("testutil.StartPostgres: mapped port: %w", err)
	}

	dsn := fmt.Sprintf("postgres://timekeeper:timekeeper@%s:%s/timekeeper_test?sslmode=disable", host, port.Port())
	return dsn, terminate, nil
}
