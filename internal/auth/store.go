package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/mrjordantanner/trnkt-backend/internal/models"
)

// ErrUserExists is returned when registering an email that already has an
// account.
var ErrUserExists = errors.New("auth: user already exists")

// UserStore persists account records in the Users table, keyed by email.
type UserStore struct {
	client *dynamodb.Client
	table  string
}

func NewUserStore(client *dynamodb.Client, table string) *UserStore {
	return &UserStore{client: client, table: table}
}

func (s *UserStore) key(email string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"Email": &types.AttributeValueMemberS{Value: email},
	}
}

// GetByEmail returns the user, or nil when no account exists.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(email),
	})
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", email, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var user models.User
	if err := attributevalue.UnmarshalMap(out.Item, &user); err != nil {
		return nil, fmt.Errorf("unmarshal user %s: %w", email, err)
	}
	return &user, nil
}

// Create inserts a new account, failing with ErrUserExists when the email
// is already taken.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		return fmt.Errorf("marshal user %s: %w", user.Email, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(Email)"),
	})
	var conditionFailed *types.ConditionalCheckFailedException
	if errors.As(err, &conditionFailed) {
		return ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}
	return nil
}

// UpdateUserName sets a new display name on the account.
func (s *UserStore) UpdateUserName(ctx context.Context, email, userName string) error {
	return s.updateAttr(ctx, email, "UserName", userName)
}

// UpdatePasswordHash replaces the stored password hash.
func (s *UserStore) UpdatePasswordHash(ctx context.Context, email, hash string) error {
	return s.updateAttr(ctx, email, "PasswordHash", hash)
}

// ChangeEmail re-keys the account: writes the record under the new email
// and deletes the old item. The new key must be free.
func (s *UserStore) ChangeEmail(ctx context.Context, oldEmail, newEmail string) error {
	user, err := s.GetByEmail(ctx, oldEmail)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("change email: user %s not found", oldEmail)
	}

	user.Email = newEmail
	if err := s.Create(ctx, user); err != nil {
		return err
	}
	return s.Delete(ctx, oldEmail)
}

// Delete removes the account record.
func (s *UserStore) Delete(ctx context.Context, email string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(email),
	})
	if err != nil {
		return fmt.Errorf("delete user %s: %w", email, err)
	}
	return nil
}

func (s *UserStore) updateAttr(ctx context.Context, email, attr, value string) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.table),
		Key:                 s.key(email),
		UpdateExpression:    aws.String("SET #a = :v"),
		ConditionExpression: aws.String("attribute_exists(Email)"),
		ExpressionAttributeNames: map[string]string{
			"#a": attr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
	})
	if err != nil {
		return fmt.Errorf("update %s for user %s: %w", attr, email, err)
	}
	return nil
}
