// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package telemetry

import (
	"context"

	"github.com/hashicorp/go-zipper"
)

// Logger is the logging interface used by the hooks. It is satisfied by
// *slog.Logger.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// NewLogHook returns a [zipper.TelemetryHook] that logs the telemetry data
// of every extraction on info level.
func NewLogHook(logger Logger) zipper.TelemetryHook {
	return func(ctx context.Context, td *zipper.TelemetryData) {
		logger.Info("extraction finished", "telemetry", td)
	}
}

// Chain returns a [zipper.TelemetryHook] that calls all hooks in order.
func Chain(hooks ...zipper.TelemetryHook) zipper.TelemetryHook {
	return func(ctx context.Context, td *zipper.TelemetryData) {
		for _, hook := range hooks {
			hook(ctx, td)
		}
	}
}
