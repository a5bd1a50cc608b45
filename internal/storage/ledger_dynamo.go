package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the slice of the DynamoDB client the ledger uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoDBItem represents an item stored in DynamoDB
type DynamoDBItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Data      string `dynamodbav:"Data"`
	Timestamp string `dynamodbav:"Timestamp"`
	TTL       int64  `dynamodbav:"TTL,omitempty"`
}

// DynamoLedger stores runs under PK "RUN#<pipeline>", SK "<run date>#<run id>".
type DynamoLedger struct {
	client    DynamoAPI
	tableName string
	ttl       time.Duration
}

// NewDynamoLedger wraps an existing client. ttlDays <= 0 disables expiry.
func NewDynamoLedger(client DynamoAPI, tableName string, ttlDays int) *DynamoLedger {
	return &DynamoLedger{
		client:    client,
		tableName: tableName,
		ttl:       time.Duration(ttlDays) * 24 * time.Hour,
	}
}

// NewDynamoLedgerFromConfig builds the DynamoDB client from awsCfg.
func NewDynamoLedgerFromConfig(awsCfg aws.Config, tableName string, ttlDays int) *DynamoLedger {
	return NewDynamoLedger(dynamodb.NewFromConfig(awsCfg), tableName, ttlDays)
}

func runPK(pipeline string) string { return "RUN#" + pipeline }

// Record saves rec.
func (l *DynamoLedger) Record(ctx context.Context, rec RunRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling run record: %w", err)
	}

	item := DynamoDBItem{
		PK:        runPK(rec.Pipeline),
		SK:        fmt.Sprintf("%s#%s", rec.RunDate, rec.RunID),
		Data:      string(data),
		Timestamp: rec.FinishedAt.UTC().Format(time.RFC3339),
	}
	if l.ttl > 0 {
		item.TTL = rec.FinishedAt.Add(l.ttl).Unix()
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshaling item: %w", err)
	}

	_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(l.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("putting item to DynamoDB: %w", err)
	}
	return nil
}

// Recent queries the pipeline's partition newest first.
func (l *DynamoLedger) Recent(ctx context.Context, pipeline string, limit int) ([]RunRecord, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(l.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: runPK(pipeline)},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	result, err := l.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("querying DynamoDB: %w", err)
	}

	var records []RunRecord
	for _, item := range result.Items {
		var dbItem DynamoDBItem
		if err := attributevalue.UnmarshalMap(item, &dbItem); err != nil {
			continue
		}
		var rec RunRecord
		if err := json.Unmarshal([]byte(dbItem.Data), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Close is a no-op; the client holds no resources.
func (l *DynamoLedger) Close() error { return nil }
