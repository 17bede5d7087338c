// Package llm abstracts the external model backend. The backend is an
// untrusted black box: callers must tolerate any output, and every call goes
// through retry, timeout, and circuit-breaker wrappers.
package llm

import (
	"context"
	"errors"
	"net"

	openai "github.com/sashabaranov/go-openai"

	appErrors "ledgerchat-backend/pkg/errors"
)

// Message is one chat message sent to the model.
type Message struct {
	Role    string
	Content string
}

// Roles accepted by providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CompletionRequest is a provider-agnostic chat completion request.
type CompletionRequest struct {
	System      string
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Provider generates a completion for one orchestration turn.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// IsRetryable classifies provider errors worth another attempt: network
// failures, timeouts, rate limiting and server-side errors. Auth and request
// shape errors are permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if appErrors.IsTimeout(err) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}

	// Unclassified transport errors (connection reset, EOF) are retryable.
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode >= 500 || reqErr.HTTPStatusCode == 429
	}
	return errors.Is(err, context.DeadlineExceeded)
}
