package favorites

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Store is the key-value port the engines write through: one item per
// user. Get reports an absent item as (nil, nil); errors are transport
// faults only.
type Store interface {
	Get(ctx context.Context, userID string) (map[string]types.AttributeValue, error)
	Put(ctx context.Context, item map[string]types.AttributeValue) error
	Delete(ctx context.Context, userID string) error
}

// DynamoStore implements Store against the Favorites table.
type DynamoStore struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoStore(client *dynamodb.Client, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

func (s *DynamoStore) key(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"UserId": &types.AttributeValueMemberS{Value: userID},
	}
}

func (s *DynamoStore) Get(ctx context.Context, userID string) (map[string]types.AttributeValue, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(userID),
	})
	if err != nil {
		return nil, fmt.Errorf("get favorites item for user %s: %w", userID, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return out.Item, nil
}

func (s *DynamoStore) Put(ctx context.Context, item map[string]types.AttributeValue) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put favorites item: %w", err)
	}
	return nil
}

func (s *DynamoStore) Delete(ctx context.Context, userID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(userID),
	})
	if err != nil {
		return fmt.Errorf("delete favorites item for user %s: %w", userID, err)
	}
	return nil
}
