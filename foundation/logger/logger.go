// Package logger builds the structured logger used across the service.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
)

// RequestIdFunc extracts the request id carried by ctx, empty when none.
type RequestIdFunc func(ctx context.Context) string

// NewCustomLogger is going to setup a *slog.Logger writing to w and return it.
// Records logged with a request context get a "reqId" attribute from reqIdFn.
func NewCustomLogger(w io.Writer, level slog.Level, isProd bool, reqIdFn RequestIdFunc, attrs ...slog.Attr) *slog.Logger {
	//we do not want that long file path, just the file name and line number
	replacer := func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.SourceKey {
			if source, ok := a.Value.Any().(*slog.Source); ok {
				filename := filepath.Base(source.File)
				return slog.Attr{
					Key:   slog.SourceKey,
					Value: slog.StringValue(fmt.Sprintf("file:%s:%d", filename, source.Line)),
				}
			}
		}
		return a
	}

	opts := &slog.HandlerOptions{
		AddSource:   true,
		Level:       level,
		ReplaceAttr: replacer,
	}
	devHandler := slog.NewTextHandler(w, opts).WithAttrs(attrs)
	prodHandler := slog.NewJSONHandler(w, opts).WithAttrs(attrs)

	return slog.New(newCustomLogHandler(prodHandler, devHandler, isProd, reqIdFn))
}

// customLogHandler is a type that represent a custom logger that is able to base
// on environment switch it's handler
type customLogHandler struct {
	jsonHandler slog.Handler
	textHandler slog.Handler
	isProd      bool
	reqIdFn     RequestIdFunc
}

func newCustomLogHandler(jsonHandler, textHandler slog.Handler, isProd bool, reqIdFn RequestIdFunc) *customLogHandler {
	return &customLogHandler{
		jsonHandler: jsonHandler,
		textHandler: textHandler,
		isProd:      isProd,
		reqIdFn:     reqIdFn,
	}
}

func (ch *customLogHandler) active() slog.Handler {
	if ch.isProd {
		return ch.jsonHandler
	}
	return ch.textHandler
}

func (ch *customLogHandler) Handle(ctx context.Context, record slog.Record) error {
	if ch.reqIdFn != nil {
		if id := ch.reqIdFn(ctx); id != "" {
			record.AddAttrs(slog.String("reqId", id))
		}
	}
	return ch.active().Handle(ctx, record)
}

func (ch *customLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return ch.active().Enabled(ctx, level)
}

func (ch *customLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return newCustomLogHandler(ch.jsonHandler.WithAttrs(attrs), ch.textHandler.WithAttrs(attrs), ch.isProd, ch.reqIdFn)
}

func (ch *customLogHandler) WithGroup(name string) slog.Handler {
	return newCustomLogHandler(ch.jsonHandler.WithGroup(name), ch.textHandler.WithGroup(name), ch.isProd, ch.reqIdFn)
}
