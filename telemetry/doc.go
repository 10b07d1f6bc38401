// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package telemetry provides [zipper.TelemetryHook] implementations, that hand
// the telemetry data of an extraction to a log or to a telemetry service.
package telemetry
