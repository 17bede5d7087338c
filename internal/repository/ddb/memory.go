package ddb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"ledgerchat-backend/internal/domain"
	"ledgerchat-backend/internal/repository"
)

func (s *Store) GetConversationMemory(ctx context.Context, userID string) (*domain.ConversationMemory, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       entityKey(userID, skConversationMemory),
	})
	if err != nil {
		return nil, fmt.Errorf("DynamoDB GetItem failed for conversation memory: %w", err)
	}
	if result.Item == nil {
		return nil, repository.ErrMemoryNotFound
	}

	var rec memoryRecord
	if err := attributevalue.UnmarshalMap(result.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation memory: %w", err)
	}
	return &domain.ConversationMemory{
		UserID:    rec.UserID,
		Summary:   rec.Summary,
		UpdatedAt: parseTime(rec.UpdatedAt),
	}, nil
}

func (s *Store) SaveConversationMemory(ctx context.Context, memory *domain.ConversationMemory) error {
	rec := memoryRecord{
		PK:         userPK(memory.UserID),
		SK:         skConversationMemory,
		EntityType: "CONVMEM",
		UserID:     memory.UserID,
		Summary:    memory.Summary,
		UpdatedAt:  memory.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation memory: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("DynamoDB PutItem failed for conversation memory: %w", err)
	}
	return nil
}
