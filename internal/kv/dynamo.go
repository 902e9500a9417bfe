package kv

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"tokengate/internal/aws"
)

// record is the item shape persisted in the records table.
// expires_at is the table's TTL attribute.
type record struct {
	CacheKey  string `dynamodbav:"cache_key"` // PK
	Value     string `dynamodbav:"value"`
	ExpiresAt int64  `dynamodbav:"expires_at"` // TTL epoch seconds
}

// DynamoStore implements Store on a single DynamoDB table.
type DynamoStore struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewDynamoStore returns a Store bound to tableName.
func NewDynamoStore(client aws.DynamoDBAPI, tableName string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

func (s *DynamoStore) keyAttr(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"cache_key": &types.AttributeValueMemberS{Value: key},
	}
}

// Get fetches a record. DynamoDB's TTL reaper is lazy (expired items can
// linger for hours), so expiry is also enforced here on read.
func (s *DynamoStore) Get(ctx context.Context, key string) (string, bool, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       s.keyAttr(key),
	})
	if err != nil {
		return "", false, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return "", false, nil
	}
	var rec record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return "", false, fmt.Errorf("unmarshal item: %w", err)
	}
	if rec.ExpiresAt <= s.nowFunc().Unix() {
		return "", false, nil
	}
	return rec.Value, true, nil
}

// Set writes the record unconditionally.
func (s *DynamoStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	item, err := attributevalue.MarshalMap(record{
		CacheKey:  key,
		Value:     value,
		ExpiresAt: s.nowFunc().Add(ttl).Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// SetIfAbsent writes the record only when attribute_not_exists(cache_key)
// holds. A conditional check failure means a live record already exists and is
// reported as (false, nil) so callers can treat "lost the race" as an ordinary
// outcome.
func (s *DynamoStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	item, err := attributevalue.MarshalMap(record{
		CacheKey:  key,
		Value:     value,
		ExpiresAt: s.nowFunc().Add(ttl).Unix(),
	})
	if err != nil {
		return false, fmt.Errorf("marshal record: %w", err)
	}

	input := &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
		// Only create when attribute_not_exists(cache_key)
		ConditionExpression: awsString("attribute_not_exists(cache_key)"),
	}

	_, err = s.client.PutItem(ctx, input)
	if err != nil {
		// detect conditional check failure
		var sc smithy.APIError
		if errors.As(err, &sc) && sc.ErrorCode() == "ConditionalCheckFailedException" {
			return false, nil
		}
		return false, fmt.Errorf("put item: %w", err)
	}

	return true, nil
}

// RefreshTTL pushes expires_at forward on an existing record.
func (s *DynamoStore) RefreshTTL(ctx context.Context, key string, ttl time.Duration) error {
	expires := strconv.FormatInt(s.nowFunc().Add(ttl).Unix(), 10)
	input := &dyn.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              s.keyAttr(key),
		UpdateExpression: awsString("SET expires_at = :exp"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":exp": &types.AttributeValueMemberN{Value: expires},
		},
		ConditionExpression: awsString("attribute_exists(cache_key)"),
	}
	_, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var sc *types.ConditionalCheckFailedException
		if errors.As(err, &sc) {
			return ErrNotFound
		}
		return fmt.Errorf("update item (refresh ttl): %w", err)
	}
	return nil
}

// Delete removes the record; absent keys are a no-op.
func (s *DynamoStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key:       s.keyAttr(key),
	})
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// Helper
func awsString(s string) *string { return &s }
