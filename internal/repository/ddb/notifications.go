package ddb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"ledgerchat-backend/internal/domain"
	"ledgerchat-backend/internal/repository"
)

func toNotificationRecord(n *domain.Notification) notificationRecord {
	return notificationRecord{
		PK:         userPK(n.UserID),
		SK:         skNotificationPrefix + n.ID,
		EntityType: "NOTIFICATION",
		ID:         n.ID,
		UserID:     n.UserID,
		Message:    n.Message,
		Type:       string(n.Type),
		JobID:      n.JobID,
		Read:       n.Read,
		CreatedAt:  n.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  n.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (s *Store) CreateNotification(ctx context.Context, notification *domain.Notification) error {
	item, err := attributevalue.MarshalMap(toNotificationRecord(notification))
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("DynamoDB PutItem failed for notification %s: %w", notification.ID, err)
	}
	return nil
}

func (s *Store) GetNotification(ctx context.Context, userID, notificationID string) (*domain.Notification, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       entityKey(userID, skNotificationPrefix+notificationID),
	})
	if err != nil {
		return nil, fmt.Errorf("DynamoDB GetItem failed for notification %s: %w", notificationID, err)
	}
	if result.Item == nil {
		return nil, repository.ErrNotificationNotFound
	}

	var rec notificationRecord
	if err := attributevalue.UnmarshalMap(result.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification item: %w", err)
	}
	return rec.toDomain(), nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string) ([]*domain.Notification, error) {
	items, err := s.queryPrefix(ctx, userID, skNotificationPrefix)
	if err != nil {
		return nil, err
	}

	notifications := make([]*domain.Notification, 0, len(items))
	for _, item := range items {
		var rec notificationRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			s.logger.Warn("skipping unreadable notification item", zap.Error(err))
			continue
		}
		notifications = append(notifications, rec.toDomain())
	}
	return notifications, nil
}

func (s *Store) UpdateNotification(ctx context.Context, notification *domain.Notification) error {
	item, err := attributevalue.MarshalMap(toNotificationRecord(notification))
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
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
			return repository.ErrNotificationNotFound
		}
		return fmt.Errorf("DynamoDB PutItem failed for notification %s: %w", notification.ID, err)
	}
	return nil
}

func (s *Store) DeleteNotification(ctx context.Context, userID, notificationID string) error {
	cond := expression.AttributeExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       entityKey(userID, skNotificationPrefix+notificationID),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if IsConditionalCheckFailed(err) {
			return repository.ErrNotificationNotFound
		}
		return fmt.Errorf("DynamoDB DeleteItem failed for notification %s: %w", notificationID, err)
	}
	return nil
}
