package ddb

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// IsConditionalCheckFailed reports whether err is a failed conditional write,
// which the repositories use to detect missing items on update/delete.
func IsConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// IsRetryable classifies DynamoDB errors that are worth retrying: throttling
// and transient server-side failures.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var throughput *types.ProvisionedThroughputExceededException
	if errors.As(err, &throughput) {
		return true
	}
	var limit *types.RequestLimitExceeded
	if errors.As(err, &limit) {
		return true
	}
	var internal *types.InternalServerError
	if errors.As(err, &internal) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "ServiceUnavailable", "RequestTimeout":
			return true
		}
	}
	return false
}
