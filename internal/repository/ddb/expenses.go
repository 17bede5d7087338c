package ddb

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"ledgerchat-backend/internal/domain"
	"ledgerchat-backend/internal/repository"
)

func (s *Store) CreateExpense(ctx context.Context, expense *domain.Expense) error {
	item, err := attributevalue.MarshalMap(toExpenseRecord(expense))
	if err != nil {
		return fmt.Errorf("failed to marshal expense: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("DynamoDB PutItem failed for expense %s: %w", expense.ID, err)
	}
	return nil
}

func (s *Store) GetExpense(ctx context.Context, userID, expenseID string) (*domain.Expense, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       entityKey(userID, skExpensePrefix+expenseID),
	})
	if err != nil {
		return nil, fmt.Errorf("DynamoDB GetItem failed for expense %s: %w", expenseID, err)
	}
	if result.Item == nil {
		return nil, repository.ErrExpenseNotFound
	}

	var rec expenseRecord
	if err := attributevalue.UnmarshalMap(result.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal expense item: %w", err)
	}
	return rec.toDomain(), nil
}

func (s *Store) ListExpenses(ctx context.Context, userID string) ([]*domain.Expense, error) {
	items, err := s.queryPrefix(ctx, userID, skExpensePrefix)
	if err != nil {
		return nil, err
	}
	return s.unmarshalExpenses(items), nil
}

// ListExpensesByJob queries the user partition with a JobID filter. The
// partition holds one user's data only, so the filtered query stays cheap.
func (s *Store) ListExpensesByJob(ctx context.Context, userID, jobID string) ([]*domain.Expense, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(userPK(userID))).
		And(expression.Key("SK").BeginsWith(skExpensePrefix))
	filter := expression.Name("JobID").Equal(expression.Value(jobID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	items, err := s.queryAll(ctx, expr)
	if err != nil {
		return nil, err
	}
	return s.unmarshalExpenses(items), nil
}

// ListExpensesByCategory filters by category name, case-insensitively on the
// service side; the stored Category attribute keeps the display casing.
func (s *Store) ListExpensesByCategory(ctx context.Context, userID, category string) ([]*domain.Expense, error) {
	all, err := s.ListExpenses(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Expense, 0, len(all))
	for _, e := range all {
		if strings.EqualFold(e.Category, category) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) UpdateExpense(ctx context.Context, expense *domain.Expense) error {
	item, err := attributevalue.MarshalMap(toExpenseRecord(expense))
	if err != nil {
		return fmt.Errorf("failed to marshal expense: %w", err)
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
			return repository.ErrExpenseNotFound
		}
		return fmt.Errorf("DynamoDB PutItem failed for expense %s: %w", expense.ID, err)
	}
	return nil
}

func (s *Store) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	cond := expression.AttributeExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       entityKey(userID, skExpensePrefix+expenseID),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if IsConditionalCheckFailed(err) {
			return repository.ErrExpenseNotFound
		}
		return fmt.Errorf("DynamoDB DeleteItem failed for expense %s: %w", expenseID, err)
	}
	return nil
}

func (s *Store) unmarshalExpenses(items []map[string]types.AttributeValue) []*domain.Expense {
	expenses := make([]*domain.Expense, 0, len(items))
	for _, item := range items {
		var rec expenseRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			s.logger.Warn("skipping unreadable expense item", zap.Error(err))
			continue
		}
		expenses = append(expenses, rec.toDomain())
	}
	return expenses
}

// queryAll pages through a pre-built query expression.
func (s *Store) queryAll(ctx context.Context, expr expression.Expression) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	var lastKey map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
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
