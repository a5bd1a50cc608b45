package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQS) SendMessage(ctx context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("expected a deadline")
	}
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, in)
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestPublish(t *testing.T) {
	fake := &fakeSQS{}
	pub := NewSQSPublisher(fake, "https://sqs.eu-west-3.amazonaws.com/123/snapshots")

	err := pub.Publish(context.Background(), SnapshotEvent{
		RunID:       "run-1",
		Pipeline:    "trending",
		Bucket:      "snapshots",
		Key:         "trending/daily_trending_scrap_2024.05.01.parquet",
		RunDate:     "2024-05-01",
		Rows:        150,
		PublishedAt: time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, fake.inputs, 1)

	in := fake.inputs[0]
	assert.Equal(t, "https://sqs.eu-west-3.amazonaws.com/123/snapshots", aws.ToString(in.QueueUrl))
	assert.Equal(t, "trending", aws.ToString(in.MessageAttributes["pipeline"].StringValue))

	var evt SnapshotEvent
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.MessageBody)), &evt))
	assert.Equal(t, EventSnapshotPublished, evt.EventType)
	assert.Equal(t, int64(150), evt.Rows)
	assert.Equal(t, "trending/daily_trending_scrap_2024.05.01.parquet", evt.Key)
}

func TestPublishError(t *testing.T) {
	pub := NewSQSPublisher(&fakeSQS{err: errors.New("queue does not exist")}, "q")

	err := pub.Publish(context.Background(), SnapshotEvent{Pipeline: "categories"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue does not exist")
}
