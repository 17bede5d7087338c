// Package ddb implements repository.Store on DynamoDB using a single-table
// layout: PK = USER#<userID>, SK = <entity prefix>#<entityID>. One partition
// per user keeps every list operation a single Query.
package ddb

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"ledgerchat-backend/internal/config"
	"ledgerchat-backend/internal/repository"
)

const (
	skJobPrefix          = "JOB#"
	skExpensePrefix      = "EXP#"
	skCategoryPrefix     = "CAT#"
	skNotificationPrefix = "NOTIF#"
	skConversationMemory = "CONVMEM"
)

// Store is the DynamoDB-backed repository.Store implementation.
type Store struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

var _ repository.Store = (*Store)(nil)

// NewStore creates a Store bound to the configured table.
func NewStore(client *dynamodb.Client, tableName string, logger *zap.Logger) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// NewClient builds a DynamoDB client from the store configuration. A
// non-empty endpoint points the client at a local DynamoDB instance.
func NewClient(ctx context.Context, storeCfg config.StoreConfig) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(storeCfg.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	if storeCfg.Endpoint != "" {
		return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			o.BaseEndpoint = &storeCfg.Endpoint
		}), nil
	}
	return dynamodb.NewFromConfig(awsCfg), nil
}

func userPK(userID string) string {
	return "USER#" + userID
}
