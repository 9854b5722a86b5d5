// Package redistest provides setup and clean up for testing redis clients.
package redistest

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient starts an in-process redis server and returns a client to it
// along with the server, so tests can inspect keys or fast forward ttls.
func NewRedisClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr:     srv.Addr(),
		Password: "",
		DB:       0,
	})

	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Errorf("failed to close redis client: %s", err)
		}
	})

	return client, srv
}
