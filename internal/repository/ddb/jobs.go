package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"ledgerchat-backend/internal/domain"
	"ledgerchat-backend/internal/repository"
)

func (s *Store) CreateJob(ctx context.Context, job *domain.Job) error {
	item, err := attributevalue.MarshalMap(toJobRecord(job))
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("DynamoDB PutItem failed for job %s: %w", job.ID, err)
	}
	return nil
}

func (s *Store) GetJob(ctx context.Context, userID, jobID string) (*domain.Job, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       entityKey(userID, skJobPrefix+jobID),
	})
	if err != nil {
		return nil, fmt.Errorf("DynamoDB GetItem failed for job %s: %w", jobID, err)
	}
	if result.Item == nil {
		return nil, repository.ErrJobNotFound
	}

	var rec jobRecord
	if err := attributevalue.UnmarshalMap(result.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job item: %w", err)
	}
	return rec.toDomain(), nil
}

func (s *Store) ListJobs(ctx context.Context, userID string) ([]*domain.Job, error) {
	items, err := s.queryPrefix(ctx, userID, skJobPrefix)
	if err != nil {
		return nil, err
	}

	jobs := make([]*domain.Job, 0, len(items))
	for _, item := range items {
		var rec jobRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			s.logger.Warn("skipping unreadable job item", zap.Error(err))
			continue
		}
		jobs = append(jobs, rec.toDomain())
	}
	return jobs, nil
}

func (s *Store) UpdateJob(ctx context.Context, job *domain.Job) error {
	item, err := attributevalue.MarshalMap(toJobRecord(job))
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
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
			return repository.ErrJobNotFound
		}
		return fmt.Errorf("DynamoDB PutItem failed for job %s: %w", job.ID, err)
	}
	return nil
}

func (s *Store) DeleteJob(ctx context.Context, userID, jobID string) error {
	cond := expression.AttributeExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       entityKey(userID, skJobPrefix+jobID),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if IsConditionalCheckFailed(err) {
			return repository.ErrJobNotFound
		}
		return fmt.Errorf("DynamoDB DeleteItem failed for job %s: %w", jobID, err)
	}
	return nil
}

// entityKey builds the composite key for a single item.
func entityKey(userID, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// queryPrefix pages through every item of one entity type in a user partition.
func (s *Store) queryPrefix(ctx context.Context, userID, skPrefix string) ([]map[string]types.AttributeValue, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(userPK(userID))).
		And(expression.Key("SK").BeginsWith(skPrefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	var items []map[string]types.AttributeValue
	var lastKey map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, fmt.Errorf("DynamoDB Query failed: %w", err)
		}
		items = append(items, out.Items...)
		if out.LastEvaluatedKey == nil {
			return items, nil
		}
		lastKey = out.LastEvaluatedKey
	}
}
