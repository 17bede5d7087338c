package ddb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"ledgerchat-backend/internal/domain"
	"ledgerchat-backend/internal/repository"
)

func (s *Store) CreateCategory(ctx context.Context, category *domain.Category) error {
	rec := categoryRecord{
		PK:         userPK(category.UserID),
		SK:         skCategoryPrefix + category.ID,
		EntityType: "CATEGORY",
		ID:         category.ID,
		UserID:     category.UserID,
		Name:       category.Name,
		NameLower:  strings.ToLower(category.Name),
		CreatedAt:  category.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  category.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal category: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("DynamoDB PutItem failed for category %s: %w", category.ID, err)
	}
	return nil
}

func (s *Store) GetCategory(ctx context.Context, userID, categoryID string) (*domain.Category, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       entityKey(userID, skCategoryPrefix+categoryID),
	})
	if err != nil {
		return nil, fmt.Errorf("DynamoDB GetItem failed for category %s: %w", categoryID, err)
	}
	if result.Item == nil {
		return nil, repository.ErrCategoryNotFound
	}

	var rec categoryRecord
	if err := attributevalue.UnmarshalMap(result.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal category item: %w", err)
	}
	return rec.toDomain(), nil
}

// GetCategoryByName looks a category up by its case-insensitive name using
// the stored NameLower attribute.
func (s *Store) GetCategoryByName(ctx context.Context, userID, name string) (*domain.Category, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(userPK(userID))).
		And(expression.Key("SK").BeginsWith(skCategoryPrefix))
	filter := expression.Name("NameLower").Equal(expression.Value(strings.ToLower(name)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	items, err := s.queryAll(ctx, expr)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, repository.ErrCategoryNotFound
	}

	var rec categoryRecord
	if err := attributevalue.UnmarshalMap(items[0], &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal category item: %w", err)
	}
	return rec.toDomain(), nil
}

func (s *Store) ListCategories(ctx context.Context, userID string) ([]*domain.Category, error) {
	items, err := s.queryPrefix(ctx, userID, skCategoryPrefix)
	if err != nil {
		return nil, err
	}

	categories := make([]*domain.Category, 0, len(items))
	for _, item := range items {
		var rec categoryRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			s.logger.Warn("skipping unreadable category item", zap.Error(err))
			continue
		}
		categories = append(categories, rec.toDomain())
	}
	return categories, nil
}

func (s *Store) UpdateCategory(ctx context.Context, category *domain.Category) error {
	rec := categoryRecord{
		PK:         userPK(category.UserID),
		SK:         skCategoryPrefix + category.ID,
		EntityType: "CATEGORY",
		ID:         category.ID,
		UserID:     category.UserID,
		Name:       category.Name,
		NameLower:  strings.ToLower(category.Name),
		CreatedAt:  category.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  category.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal category: %w", err)
	}

	cond := expression.AttributeExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if IsConditionalCheckFailed(err) {
			return repository.ErrCategoryNotFound
		}
		return fmt.Errorf("DynamoDB PutItem failed for category %s: %w", category.ID, err)
	}
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	cond := expression.AttributeExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       entityKey(userID, skCategoryPrefix+categoryID),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if IsConditionalCheckFailed(err) {
			return repository.ErrCategoryNotFound
		}
		return fmt.Errorf("DynamoDB DeleteItem failed for category %s: %w", categoryID, err)
	}
	return nil
}
