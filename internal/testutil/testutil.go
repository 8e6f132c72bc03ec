// Package testutil provides shared helpers for tests that need real
// infrastructure. Tests skip when the backing service is unavailable
// unless TEST_REQUIRE_INFRA forces a hard failure.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	// Register the pgx stdlib driver for tests.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/quartzlabs/crm-ui-api/internal/migrate"
)

// TestingTB covers both *testing.T and *testing.B.
type TestingTB interface {
	Helper()
	Skip(args ...interface{})
	Skipf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
	Cleanup(func())
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

func requireInfra() bool { return envBool("TEST_REQUIRE_INFRA") }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDSN() string {
	hostPort := net.JoinHostPort(
		envOrDefault("TEST_DB_HOST", "localhost"),
		envOrDefault("TEST_DB_PORT", "55432"))
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		envOrDefault("TEST_DB_USER", "crm"),
		envOrDefault("TEST_DB_PASSWORD", "crm"),
		hostPort,
		envOrDefault("TEST_DB_NAME", "crm"))
}

// SetupTestDB opens the test database, applies migrations, and wipes
// the users table. Skips the test when PostgreSQL is unreachable.
func SetupTestDB(t TestingTB) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Fatal("open test database:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		if cerr := db.Close(); cerr != nil {
			t.Logf("close test db after ping failure: %v", cerr)
		}
		if requireInfra() {
			t.Fatal("test database not available:", pingErr)
		}
		t.Skip("test database not available:", pingErr)
	}

	if migrateErr := migrate.Run(ctx, db, testLogger()); migrateErr != nil {
		t.Fatal("run migrations:", migrateErr)
	}
	CleanupTestDB(t, db)

	t.Cleanup(func() {
		CleanupTestDB(t, db)
		if cerr := db.Close(); cerr != nil {
			t.Logf("close test db: %v", cerr)
		}
	})
	return db
}

// CleanupTestDB removes all rows written by tests.
func CleanupTestDB(t TestingTB, db *sql.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "DELETE FROM users"); err != nil {
		t.Fatalf("clean up users table: %v", err)
	}
}

// SetupTestRedis creates a Redis client for tests, flushing the chosen
// DB first. Skips the test when Redis is unreachable.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	addr := envOrDefault("TEST_REDIS_ADDR", "localhost:56379")
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			t.Logf("close redis client after ping failure: %v", cerr)
		}
		if requireInfra() {
			t.Fatalf("redis not available at %s: %v", addr, err)
		}
		t.Skipf("redis not available at %s: %v", addr, err)
	}

	client.FlushDB(ctx)
	t.Cleanup(func() {
		if cerr := client.Close(); cerr != nil {
			t.Logf("close redis client: %v", cerr)
		}
	})
	return client
}
