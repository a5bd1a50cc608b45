// Package notify announces published snapshots on an SQS queue so
// downstream loaders can pick them up without polling the bucket.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// EventSnapshotPublished is the only event type sent.
const EventSnapshotPublished = "snapshot.published"

// SnapshotEvent describes one uploaded artifact.
type SnapshotEvent struct {
	EventType   string    `json:"event_type"`
	RunID       string    `json:"run_id"`
	Pipeline    string    `json:"pipeline"`
	Bucket      string    `json:"bucket"`
	Key         string    `json:"key"`
	RunDate     string    `json:"run_date"`
	Rows        int64     `json:"rows"`
	Incomplete  []string  `json:"incomplete_countries,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// SendMessageAPI is the slice of the SQS client the publisher uses.
type SendMessageAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Publisher sends snapshot events.
type Publisher interface {
	Publish(ctx context.Context, evt SnapshotEvent) error
}

// SQSPublisher sends events synchronously; the caller decides what a
// failure means.
type SQSPublisher struct {
	client   SendMessageAPI
	queueURL string
}

// NewSQSPublisher wraps client.
func NewSQSPublisher(client SendMessageAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{client: client, queueURL: queueURL}
}

// NewSQSPublisherFromConfig builds the SQS client from awsCfg.
func NewSQSPublisherFromConfig(awsCfg aws.Config, queueURL string) *SQSPublisher {
	return NewSQSPublisher(sqs.NewFromConfig(awsCfg), queueURL)
}

// Publish sends evt with the pipeline as a message attribute.
func (p *SQSPublisher) Publish(ctx context.Context, evt SnapshotEvent) error {
	if evt.EventType == "" {
		evt.EventType = EventSnapshotPublished
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal snapshot event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"pipeline": {
				DataType:    aws.String("String"),
				StringValue: aws.String(evt.Pipeline),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("publishing to SQS: %w", err)
	}
	return nil
}
