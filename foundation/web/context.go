package web

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type key int

const requestMetadataKey key = 1

// requestMetadata travels with each request through the middlewares till it
// reaches the handler.
type requestMetadata struct {
	StartedAt  time.Time
	StatusCode int
	RequestId  uuid.UUID
}

func injectRequestMetadata(ctx context.Context, rm *requestMetadata) context.Context {
	return context.WithValue(ctx, requestMetadataKey, rm)
}

func setStatusCode(ctx context.Context, status int) {
	rm, ok := ctx.Value(requestMetadataKey).(*requestMetadata)
	if !ok {
		return
	}
	rm.StatusCode = status
}

func GetStatusCode(ctx context.Context) int {
	rm, ok := ctx.Value(requestMetadataKey).(*requestMetadata)
	if !ok {
		return 0
	}
	return rm.StatusCode
}

func GetStartedAt(ctx context.Context) time.Time {
	rm, ok := ctx.Value(requestMetadataKey).(*requestMetadata)
	if !ok {
		return time.Time{}
	}
	return rm.StartedAt
}

// GetRequestId returns the id assigned to the request, the zero uuid outside
// of a request.
func GetRequestId(ctx context.Context) uuid.UUID {
	rm, ok := ctx.Value(requestMetadataKey).(*requestMetadata)
	if !ok {
		return uuid.UUID{}
	}
	return rm.RequestId
}
