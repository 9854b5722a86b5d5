// dbtest provides with helpers to setup database for testing.
package dbtest

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"testing"
	"time"

	"github.com/hamidoujand/user-service/business/database/postgres"
	"github.com/hamidoujand/user-service/foundation/docker"
)

// NewDatabaseClient starts a postgres container, creates a random database with
// the users schema migrated and returns a client to it. The test is skipped in
// short mode or when docker is not installed.
func NewDatabaseClient(t *testing.T, name string) *postgres.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	if !docker.Available() {
		t.Skip("docker is not available")
	}

	image := "postgres:16-alpine"
	port := "5432"
	dockerArgs := []string{"-e", "POSTGRES_PASSWORD=password"}
	appArgs := []string{"-c", "log_statement=all"}

	c, err := docker.StartContainer(image, name, port, dockerArgs, appArgs)
	if err != nil {
		t.Fatalf("failed to start container with image %q: %s", image, err)
	}

	t.Logf("Name/ID:  %s", c.Id)
	t.Logf("Host:Port  %s", c.HostPort)

	//connect to db as main user
	masterClient, err := postgres.NewClient(postgres.Config{
		User:       "postgres",
		Password:   "password",
		Host:       c.HostPort,
		Name:       "postgres",
		DisableTLS: true,
	})
	if err != nil {
		t.Fatalf("failed to create master db client: %s", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute*2)
	defer cancel()

	if err := masterClient.StatusCheck(ctx); err != nil {
		t.Logf("container logs:\n%s", c.DumpLogs())
		t.Fatalf("status check failed: %s", err)
	}

	bs := make([]byte, 8)
	if _, err := rand.Read(bs); err != nil {
		t.Fatalf("generating random database name: %s", err)
	}
	dbName := "a" + hex.EncodeToString(bs)

	if _, err := masterClient.DB.ExecContext(ctx, "CREATE DATABASE "+dbName); err != nil {
		t.Fatalf("failed to create database %q: %s", dbName, err)
	}

	client, err := postgres.NewClient(postgres.Config{
		User:       "postgres",
		Password:   "password",
		Host:       c.HostPort,
		Name:       dbName,
		DisableTLS: true,
	})
	if err != nil {
		t.Fatalf("failed to create a client: %s", err)
	}

	if err := client.StatusCheck(ctx); err != nil {
		t.Fatalf("status check failed against %s: %s", dbName, err)
	}

	t.Logf("running migration against: %q database", dbName)
	if err := client.Migrate(); err != nil {
		t.Fatalf("failed to run migrations: %s", err)
	}

	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Errorf("failed to close client connection: %s", err)
		}

		//terminate all conns to that random database otherwise can not delete it
		const q = `SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname=$1`
		if _, err := masterClient.DB.ExecContext(context.Background(), q, dbName); err != nil {
			t.Errorf("failed to remove all connections to db %q", dbName)
		}

		if _, err := masterClient.DB.ExecContext(context.Background(), "DROP DATABASE "+dbName); err != nil {
			t.Errorf("failed to delete database %s: %s", dbName, err)
		}

		_ = masterClient.Close()

		if err := c.Stop(); err != nil {
			t.Logf("failed to stop container %s: %s", c.Id, err)
		}
	})
	return client
}
