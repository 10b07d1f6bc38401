// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package telemetry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchevents"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchevents/types"
	"github.com/hashicorp/go-zipper"
)

// DetailType is the detail type of the published events.
const DetailType = "zipper extraction"

// PutEventsAPI is the part of the CloudWatch Events client used by the hook.
type PutEventsAPI interface {
	PutEvents(ctx context.Context, params *cloudwatchevents.PutEventsInput, optFns ...func(*cloudwatchevents.Options)) (*cloudwatchevents.PutEventsOutput, error)
}

// NewCloudWatchClient creates a CloudWatch Events client from the default AWS
// configuration of the environment (variables, shared config, instance role).
func NewCloudWatchClient(ctx context.Context) (*cloudwatchevents.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot load aws configuration: %w", err)
	}
	return cloudwatchevents.NewFromConfig(cfg), nil
}

// NewCloudWatchHook returns a [zipper.TelemetryHook] that publishes the
// telemetry data of every extraction as event with source. Failures are
// logged and do not affect the extraction.
func NewCloudWatchHook(client PutEventsAPI, source string, logger Logger) zipper.TelemetryHook {
	return func(ctx context.Context, td *zipper.TelemetryData) {
		detail, err := json.Marshal(td)
		if err != nil {
			logger.Error("cannot encode telemetry data", "error", err)
			return
		}

		out, err := client.PutEvents(ctx, &cloudwatchevents.PutEventsInput{
			Entries: []types.PutEventsRequestEntry{
				{
					Source:     aws.String(source),
					DetailType: aws.String(DetailType),
					Detail:     aws.String(string(detail)),
				},
			},
		})
		if err != nil {
			logger.Error("cannot publish telemetry data", "error", err)
			return
		}

		for _, entry := range out.Entries {
			if entry.ErrorCode != nil {
				logger.Error("telemetry event rejected", "code", aws.ToString(entry.ErrorCode), "message", aws.ToString(entry.ErrorMessage))
			}
		}
	}
}
