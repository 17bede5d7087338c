package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ledgerchat-backend/internal/config"
	"ledgerchat-backend/internal/domain"
	"ledgerchat-backend/internal/llm"
	"ledgerchat-backend/internal/observability"
	"ledgerchat-backend/internal/service/ledger"
	"ledgerchat-backend/pkg/api"
	appErrors "ledgerchat-backend/pkg/errors"
)

// maxMemoryRunes bounds the rolling conversation summary. Older turns fall
// off the front; the model only ever needs recent context.
const maxMemoryRunes = 2000

// TurnInput is one user turn as received from the transport layer.
type TurnInput struct {
	UserID  string
	Prompt  string
	History []api.ChatMessage
	Context *api.ChatContext
}

// TurnOutput is the caller-facing result of one orchestration turn.
type TurnOutput struct {
	Text          string
	Actions       []api.Action
	CorrelationID string
	Execution     Result
}

// Orchestrator runs the per-turn pipeline: load context, build aliases,
// compose the prompt, call the model, interpret the reply, execute actions,
// persist memory. One turn is one cooperative sequence of awaited calls; the
// alias table travels through it as an explicit value.
type Orchestrator struct {
	ledger      *ledger.Service
	provider    llm.Provider
	interpreter *Interpreter
	executor    *Executor
	modelCfg    config.ModelConfig
	metrics     *observability.Metrics
	logger      *zap.Logger
}

func NewOrchestrator(
	svc *ledger.Service,
	provider llm.Provider,
	modelCfg config.ModelConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		ledger:      svc,
		provider:    provider,
		interpreter: NewInterpreter(logger),
		executor:    NewExecutor(svc, logger),
		modelCfg:    modelCfg,
		metrics:     metrics,
		logger:      logger,
	}
}

// Executor exposes the action executor for the direct execution endpoint.
func (o *Orchestrator) Executor() *Executor {
	return o.executor
}

// RunTurn executes one full chat turn for a user.
func (o *Orchestrator) RunTurn(ctx context.Context, in TurnInput) (TurnOutput, error) {
	started := time.Now()
	correlationID := uuid.New().String()
	logger := o.logger.With(
		zap.String("correlation_id", correlationID),
		zap.String("user_id", in.UserID),
	)

	snapshot, err := o.ledger.Snapshot(ctx, in.UserID)
	if err != nil {
		return TurnOutput{}, err
	}

	memory := o.loadMemory(ctx, in)
	receipts := o.collectReceipts(in)
	prompt := in.Prompt
	if r, cleaned, ok := ExtractReceiptAnnotation(prompt); ok {
		receipts = append(receipts, r)
		prompt = cleaned
	}

	facts := ExtractStateChanges(in.History, *snapshot)
	aliases := BuildAliasTable(*snapshot)

	system := ComposePrompt(ComposeInput{
		Snapshot: *snapshot,
		Aliases:  aliases,
		Memory:   memory,
		Facts:    facts,
		Receipts: receipts,
		Now:      time.Now(),
	})

	messages := make([]llm.Message, 0, len(in.History)+1)
	for _, m := range in.History {
		messages = append(messages, llm.Message{
			Role:    m.Role,
			Content: aliases.Encode(m.Content),
		})
	}
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: aliases.Encode(prompt),
	})

	raw, err := o.provider.Complete(ctx, llm.CompletionRequest{
		System:      system,
		Messages:    messages,
		Temperature: o.modelCfg.Temperature,
		MaxTokens:   o.modelCfg.MaxTokens,
	})
	if err != nil {
		o.countModelCall("error")
		logger.Error("model call failed", zap.Error(err))
		return TurnOutput{}, err
	}
	o.countModelCall("success")

	interp := o.interpreter.Interpret(raw, aliases)
	o.observeInterpretation(interp)
	logger.Debug("reply interpreted",
		zap.Int("score", interp.Score),
		zap.Bool("repaired", interp.Repaired),
		zap.Int("actions", len(interp.Actions)),
	)

	result := o.executor.Execute(ctx, in.UserID, interp.Actions)
	o.observeExecution(result)

	text := interp.Text
	if !result.Success {
		text = result.ErrorMessage
	}

	o.saveMemory(ctx, in.UserID, memory, prompt, text)

	if o.metrics != nil {
		o.metrics.TurnDuration.Observe(time.Since(started).Seconds())
	}
	logger.Info("turn completed",
		zap.Bool("success", result.Success),
		zap.Bool("mutated", result.AnyMutationApplied),
		zap.Duration("elapsed", time.Since(started)),
	)

	return TurnOutput{
		Text:          text,
		Actions:       wireActions(interp.Actions),
		CorrelationID: correlationID,
		Execution:     result,
	}, nil
}

// loadMemory prefers the client-supplied summary; otherwise the persisted
// one. Missing memory is simply empty.
func (o *Orchestrator) loadMemory(ctx context.Context, in TurnInput) string {
	if in.Context != nil && strings.TrimSpace(in.Context.ConversationMemory) != "" {
		return in.Context.ConversationMemory
	}
	mem, err := o.ledger.GetConversationMemory(ctx, in.UserID)
	if err != nil {
		o.logger.Warn("failed to load conversation memory", zap.Error(err))
		return ""
	}
	return mem.Summary
}

func (o *Orchestrator) collectReceipts(in TurnInput) []api.Receipt {
	if in.Context == nil {
		return nil
	}
	return in.Context.Receipts
}

// saveMemory appends this turn to the rolling summary, trimming from the
// front. Memory writes are best-effort; a failed save never fails the turn.
func (o *Orchestrator) saveMemory(ctx context.Context, userID, previous, prompt, reply string) {
	entry := fmt.Sprintf("Usuario: %s\nAsistente: %s", strings.TrimSpace(prompt), strings.TrimSpace(reply))
	summary := strings.TrimSpace(previous + "\n" + entry)
	if runes := []rune(summary); len(runes) > maxMemoryRunes {
		summary = string(runes[len(runes)-maxMemoryRunes:])
	}

	err := o.ledger.SaveConversationMemory(ctx, &domain.ConversationMemory{
		UserID:    userID,
		Summary:   summary,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		o.logger.Warn("failed to save conversation memory", zap.Error(err))
	}
}

func (o *Orchestrator) countModelCall(outcome string) {
	if o.metrics != nil {
		o.metrics.ModelCalls.WithLabelValues(outcome).Inc()
	}
}

func (o *Orchestrator) observeInterpretation(interp Interpretation) {
	if o.metrics == nil {
		return
	}
	o.metrics.QualityScore.Observe(float64(interp.Score))
	if interp.Repaired {
		o.metrics.RepairedReplies.Inc()
	}
}

func (o *Orchestrator) observeExecution(result Result) {
	if o.metrics == nil {
		return
	}
	compensated := false
	for _, entry := range result.Log {
		if entry.Action == rollbackLogAction {
			compensated = true
			continue
		}
		o.metrics.ActionsExecuted.WithLabelValues(entry.Action, entry.Status).Inc()
	}
	if compensated {
		o.metrics.CompensationRuns.Inc()
	}
}

// ValidateWireActions converts wire actions from the direct execution
// endpoint into validated ones. Unlike the interpreter, which tolerates and
// drops malformed actions from the model, the direct endpoint rejects them:
// the caller is a program, not an unreliable text generator.
func ValidateWireActions(raw []api.Action) ([]Action, error) {
	out := make([]Action, 0, len(raw))
	for _, r := range raw {
		t, ok := ParseActionType(strings.ToLower(strings.TrimSpace(r.Action)))
		if !ok {
			return nil, appErrors.NewValidation("unsupported action: " + r.Action)
		}
		out = append(out, Action{
			Type:         t,
			Data:         r.Data,
			Confirmation: r.ConfirmationMessage,
		})
	}
	return out, nil
}

func wireActions(actions []Action) []api.Action {
	out := make([]api.Action, 0, len(actions))
	for _, a := range actions {
		out = append(out, api.Action{
			Action:              a.Type.String(),
			Data:                a.Data,
			ConfirmationMessage: a.Confirmation,
		})
	}
	return out
}
