// Package brokertest provides setup and clean up for testing rabbitmq.
package brokertest

import (
	"context"
	"testing"
	"time"

	"github.com/hamidoujand/user-service/business/broker/rabbitmq"
	"github.com/hamidoujand/user-service/foundation/docker"
)

// NewTestClient starts a rabbitmq container and returns a connected client.
// The test is skipped in short mode or when docker is not installed.
func NewTestClient(t *testing.T, containerName string) *rabbitmq.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping rabbitmq integration test in short mode")
	}

	if !docker.Available() {
		t.Skip("docker is not available")
	}

	image := "rabbitmq:3.13.6"

	c, err := docker.StartContainer(image, containerName, "5672", nil, nil)
	if err != nil {
		t.Fatalf("expected to start rabbitmq container: %s", err)
	}

	//slow machine
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute*2)
	defer cancel()

	client, err := rabbitmq.NewClient(ctx, rabbitmq.Configs{
		Host:     c.HostPort,
		User:     "guest",
		Password: "guest",
	})
	if err != nil {
		t.Logf("container logs:\n%s", c.DumpLogs())
		t.Fatalf("expected to create a rabbitmq client: %s", err)
	}

	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Errorf("expected to gracefully close rabbitmq: %s", err)
		}

		if err := c.Stop(); err != nil {
			t.Errorf("expected to stop the container %s: %s", c.Id, err)
		}
	})
	return client
}
