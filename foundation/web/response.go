package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Respond writes data as json with statusCode. A nil data, or 204, writes the
// status line only.
func Respond(ctx context.Context, w http.ResponseWriter, statusCode int, data any) error {
	//if ctx is cancelled, that means client is disconnect
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.Canceled) {
			return errors.New("client is disconnected")
		}
	}

	setStatusCode(ctx, statusCode)

	if statusCode == http.StatusNoContent || data == nil {
		w.WriteHeader(statusCode)
		return nil
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("encoding data: %w", err)
	}
	return nil
}
