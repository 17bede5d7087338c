package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ledgerchat-backend/internal/service/ledger"
	"ledgerchat-backend/pkg/api"
	appErrors "ledgerchat-backend/pkg/errors"
)

// rollbackLogAction is the reserved log row name for the compensation
// outcome appended after a mid-turn failure.
const rollbackLogAction = "__rollback__"

// Log row statuses.
const (
	statusSuccess = "success"
	statusError   = "error"
	statusPartial = "partial"
)

// Result is the outcome of executing one turn's action list.
type Result struct {
	Success            bool
	AnyMutationApplied bool
	Log                []api.ActionLogEntry
	// ErrorMessage is the user-facing failure text, already in the
	// conversational register. Empty on success.
	ErrorMessage string
}

// completedAction records one applied action for possible compensation.
// Only creations are reversible: updates and deletions keep no pre-image,
// so they cannot be undone (a documented consistency gap, not a bug).
type completedAction struct {
	action     ActionType
	createdID  string
	reversible bool
}

// Executor applies a turn's actions strictly in order, never concurrently,
// and attempts compensation when an action fails after earlier ones already
// mutated state. Each action commits independently; there is no wrapping
// database transaction.
type Executor struct {
	ledger *ledger.Service
	logger *zap.Logger
}

func NewExecutor(svc *ledger.Service, logger *zap.Logger) *Executor {
	return &Executor{ledger: svc, logger: logger}
}

// Execute runs the action list for one user turn. On a mid-turn failure the
// whole turn fails: completed creations are reversed where possible and the
// outcome is reported both in the log and in the final error message.
func (e *Executor) Execute(ctx context.Context, userID string, actions []Action) Result {
	var (
		log       []api.ActionLogEntry
		completed []completedAction
		mutated   bool
	)

	for i, action := range actions {
		started := time.Now()
		detail, record, didMutate, err := e.apply(ctx, userID, action)
		elapsed := time.Since(started).Milliseconds()

		if err != nil {
			log = append(log, api.ActionLogEntry{
				Action:    action.Type.String(),
				Status:    statusError,
				Detail:    err.Error(),
				Payload:   action.Data,
				ElapsedMs: elapsed,
			})
			e.logger.Warn("action failed",
				zap.String("action", action.Type.String()),
				zap.Int("index", i),
				zap.Error(err),
			)

			msg := failureMessage(i, action.Type, err)
			if mutated {
				attempted, rolledBack := e.compensate(ctx, userID, completed, &log)
				msg += compensationMessage(attempted, rolledBack)
			}
			return Result{
				Success:            false,
				AnyMutationApplied: mutated,
				Log:                log,
				ErrorMessage:       msg,
			}
		}

		log = append(log, api.ActionLogEntry{
			Action:    action.Type.String(),
			Status:    statusSuccess,
			Detail:    detail,
			Payload:   action.Data,
			ElapsedMs: elapsed,
		})
		if didMutate {
			mutated = true
			completed = append(completed, record)
		}
	}

	return Result{Success: true, AnyMutationApplied: mutated, Log: log}
}

// compensate iterates completed actions in reverse, deleting the records
// the turn created. Non-reversible entries are logged and skipped. Returns
// how many reversals were attempted versus how many succeeded.
func (e *Executor) compensate(ctx context.Context, userID string, completed []completedAction, log *[]api.ActionLogEntry) (attempted, rolledBack int) {
	attempted = len(completed)
	for i := len(completed) - 1; i >= 0; i-- {
		c := completed[i]
		if !c.reversible {
			e.logger.Warn("action not reversible, skipping compensation",
				zap.String("action", c.action.String()))
			continue
		}

		var err error
		switch c.action {
		case ActionCreateJob:
			err = e.ledger.DeleteJob(ctx, userID, c.createdID)
		case ActionCreateExpense:
			err = e.ledger.DeleteExpense(ctx, userID, c.createdID)
		case ActionCreateNotification:
			err = e.ledger.DeleteNotification(ctx, userID, c.createdID)
		}
		if err != nil {
			e.logger.Error("compensation failed",
				zap.String("action", c.action.String()),
				zap.String("id", c.createdID),
				zap.Error(err),
			)
			continue
		}
		rolledBack++
	}

	status := statusSuccess
	if rolledBack < attempted {
		status = statusPartial
	}
	*log = append(*log, api.ActionLogEntry{
		Action: rollbackLogAction,
		Status: status,
		Detail: fmt.Sprintf("attempted=%d rolledBack=%d", attempted, rolledBack),
		Payload: map[string]any{
			"attempted":  attempted,
			"rolledBack": rolledBack,
		},
	})
	return attempted, rolledBack
}

// apply dispatches one action. The switch is exhaustive over the closed
// taxonomy; there is no unsupported-action branch because invalid names
// never get past ParseActionType.
func (e *Executor) apply(ctx context.Context, userID string, a Action) (detail string, record completedAction, mutated bool, err error) {
	switch a.Type {
	case ActionCreateJob:
		return e.applyCreateJob(ctx, userID, a)
	case ActionUpdateJob:
		return e.applyUpdateJob(ctx, userID, a)
	case ActionDeleteJob:
		return e.applyDeleteJob(ctx, userID, a)
	case ActionUpdateJobStatus:
		return e.applyUpdateJobStatus(ctx, userID, a)
	case ActionCreateExpense:
		return e.applyCreateExpense(ctx, userID, a)
	case ActionUpdateExpense:
		return e.applyUpdateExpense(ctx, userID, a)
	case ActionDeleteExpense:
		return e.applyDeleteExpense(ctx, userID, a)
	case ActionAttachExpense:
		return e.applyAttachExpense(ctx, userID, a)
	case ActionDetachExpense:
		return e.applyDetachExpense(ctx, userID, a)
	case ActionCreateCategory:
		return e.applyCreateCategory(ctx, userID, a)
	case ActionRenameCategory:
		return e.applyRenameCategory(ctx, userID, a)
	case ActionDeleteCategory:
		return e.applyDeleteCategory(ctx, userID, a)
	case ActionCreateNotification:
		return e.applyCreateNotification(ctx, userID, a)
	case ActionMarkNotificationRead:
		return e.applyMarkNotificationRead(ctx, userID, a)
	case ActionDeleteNotification:
		return e.applyDeleteNotification(ctx, userID, a)
	case ActionQuery:
		return "query only, no mutation", completedAction{}, false, nil
	}
	return "", completedAction{}, false, appErrors.NewInternal("unreachable action type", nil)
}

func (e *Executor) applyCreateJob(ctx context.Context, userID string, a Action) (string, completedAction, bool, error) {
	name, ok := stringField(a.Data, "name", "jobName")
	if !ok {
		return "", completedAction{}, false, replyValidation("falta el nombre del trabajo")
	}
	revenue, ok := floatField(a.Data, "revenue", "amount")
	if !ok {
		return "", completedAction{}, false, replyValidation("falta el ingreso del trabajo")
	}

	input := ledger.CreateJobInput{Name: name, Revenue: revenue}
	input.Client, _ = stringField(a.Data, "client")
	input.Address, _ = stringField(a.Data, "address")
	input.Description, _ = stringField(a.Data, "description")
	input.Status, _ = stringField(a.Data, "status")
	input.StartDate, _ = timeField(a.Data, "startDate")
	input.EndDate, _ = timeField(a.Data, "endDate")

	job, err := e.ledger.CreateJob(ctx, userID, input)
	if err != nil {
		return "", completedAction{}, false, err
	}
	return "created job " + job.ID,
		completedAction{action: ActionCreateJob, createdID: job.ID, reversible: true},
		true, nil
}

func (e *Executor) applyUpdateJob(ctx context.Context, userID string, a Action) (string, completedAction, bool, error) {
	job, err := e.resolveJob(ctx, userID, a.Data)
	if err != nil {
		return "", completedAction{}, false, err
	}

	var input ledger.UpdateJobInput
	// A bare "name" key is how the payload referenced the job; it only
	// means a rename when an explicit reference key is also present.
	_, hasRef := stringField(a.Data, "jobId", "jobName")
	if newName, ok := stringField(a.Data, "newName"); ok {
		input.Name = strPtr(newName)
	} else if name, ok := stringField(a.Data, "name"); ok && hasRef {
		input.Name = strPtr(name)
	}
	if v, ok := stringField(a.Data, "client"); ok {
		input.Client = strPtr(v)
	}
	if v, ok := stringField(a.Data, "address"); ok {
		input.Address = strPtr(v)
	}
	if v, ok := stringField(a.Data, "description"); ok {
		input.Description = strPtr(v)
	}
	if v, ok := floatField(a.Data, "revenue"); ok {
		input.Revenue = floatPtr(v)
	}
	if v, ok := stringField(a.Data, "status"); ok {
		input.Status = strPtr(v)
	}
	input.StartDate, _ = timeField(a.Data, "startDate")
	input.EndDate, _ = timeField(a.Data, "endDate")

	if _, err := e.ledger.UpdateJob(ctx, userID, job.ID, input); err != nil {
		return "", completedAction{}, false, err
	}
	return "updated job " + job.ID,
		completedAction{action: ActionUpdateJob, reversible: false},
		true, nil
}

func (e *Executor) applyDeleteJob(ctx context.Context, userID string, a Action) (string, completedAction, bool, error) {
	job, err := e.resolveJob(ctx, userID, a.Data)
	if err != nil {
		return "", completedAction{}, false, err
	}
	if err := e.ledger.DeleteJob(ctx, userID, job.ID); err != nil {
		return "", completedAction{}, false, err
	}
	return "deleted job " + job.ID,
		completedAction{action: ActionDeleteJob, reversible: false},
		true, nil
}

func (e *Executor) applyUpdateJobStatus(ctx context.Context, userID string, a Action) (string, completedAction, bool, error) {
	job, err := e.resolveJob(ctx, userID, a.Data)
	if err != nil {
		return "", completedAction{}, false, err
	}
	status, ok := stringField(a.Data, "status")
	if !ok {
		return "", completedAction{}, false, replyValidation("falta el estado del trabajo")
	}
	if _, err := e.ledger.UpdateJobStatus(ctx, userID, job.ID, status); err != nil {
		return "", completedAction{}, false, err
	}
	return "set job " + job.ID + " status to " + status,
		completedAction{action: ActionUpdateJobStatus, reversible: false},
		true, nil
}

func (e *Executor) applyCreateExpense(ctx context.Context, userID string, a Action) (string, completedAction, bool, error) {
	name, ok := stringField(a.Data, "name", "expenseName")
	if !ok {
		return "", completedAction{}, false, replyValidation("falta el nombre del gasto")
	}
	amount, ok := floatField(a.Data, "amount")
	if !ok {
		return "", completedAction{}, false, replyValidation("falta el monto del gasto")
	}

	input := ledger.CreateExpenseInput{Name: name, Amount: amount}
	input.Category, _ = stringField(a.Data, "category", "categoryName")
	input.Vendor, _ = stringField(a.Data, "vendor")
	input.Notes, _ = stringField(a.Data, "notes")
	input.ReceiptRef, _ = stringField(a.Data, "receiptRef", "receipt")
	input.Date, _ = timeField(a.Data, "date")

	jobID, hasLink, err := e.resolveJobLink(ctx, userID, a.Data)
	if err != nil {
		return "", completedAction{}, false, err
	}
	if hasLink {
		input.JobID = jobID
	}

	exp, err := e.ledger.CreateExpense(ctx, userID, input)
	if err != nil {
		return "", completedAction{}, false, err
	}
	return "created expense " + exp.ID,
		completedAction{action: ActionCreateExpense, createdID: exp.ID, reversible: true},
		true, nil
}

func (e *Executor) applyUpdateExpense(ctx context.Context, userID string, a Action) (string, completedAction, bool, error) {
	exp, err := e.resolveExpense(ctx, userID, a.Data)
	if err != nil {
		return "", completedAction{}, false, err
	}

	var input ledger.UpdateExpenseInput
	_, hasRef := stringField(a.Data, "expenseId", "expenseName")
	if newName, ok := stringField(a.Data, "newName"); ok {
		input.Name = strPtr(newName)
	} else if name, ok := stringField(a.Data, "name"); ok && hasRef {
		input.Name = strPtr(name)
	}
	if v, ok := floatField(a.Data, "amount"); ok {
		input.Amount = floatPtr(v)
	}
	if v, ok := stringField(a.Data, "category", "categoryName"); ok {
		input.Category = strPtr(v)
	}
	if v, ok := stringField(a.Data, "vendor"); ok {
		input.Vendor = strPtr(v)
	}
	if v, ok := stringField(a.Data, "notes"); ok {
		input.Notes = strPtr(v)
	}
	if v, ok := stringField(a.Data, "receiptRef", "receipt"); ok {
		input.ReceiptRef = strPtr(v)
	}
	input.Date, _ = timeField(a.Data, "date")

	jobID, hasLink, err := e.resolveJobLink(ctx, userID, a.Data)
	if err != nil {
		return "", completedAction{}, false, err
	}
	if hasLink {
		input.JobID = strPtr(jobID)
	}

	if _, err := e.ledger.UpdateExpense(ctx, userID, exp.ID, input); err != nil {
		return "", completedAction{}, false, err
	}
	return "updated expense " + exp.ID,
		completedAction{action: ActionUpdateExpense, reversible: false},
		true, nil
}

func (e *Executor) applyDeleteExpense(ctx context.Context, userID string, a Action) (string, completedAction, bool, error) {
	exp, err := e.resolveExpense(ctx, userID, a.Data)
	if err != nil {
		return "", completedAction{}, false, err
	}
	if err := e.ledger.DeleteExpense(ctx, userID, exp.ID); err != nil {
		return "", completedAction{}, false, err
	}
	return "deleted expense " + exp.ID,
		completedAction{action: ActionDeleteExpense, reversible: false},
		true, nil
}

func (e *Executor) applyAttachExpense(ctx context.Context, userID string, a Action) (string, completedAction, bool, error) {
	exp, err := e.resolveExpense(ctx, userID, a.Data)
	if err != nil {
		return "", completedAction{}, false, err
	}
	jobID, hasLink, err := e.resolveJobLink(ctx, userID, a.Data)
	if err != nil {
		return "", completedAction{}, false, err
	}
	if !hasLink {
		return "", completedAction{}, false, replyValidation("falta la referencia al trabajo")
	}
	if _, err := e.ledger.AttachExpense(ctx, userID, exp.ID, jobID); err != nil {
		return "", completedAction{}, false, err
	}
	return "attached expense " + exp.ID + " to job " + jobID,
		completedAction{action: ActionAttachExpense, reversible: false},
		true, nil
}

func (e *Executor) applyDetachExpense(ctx context.Context, userID string, a Action) (string, completedAction, bool, error) {
	exp, err := e.resolveExpense(ctx, userID, a.Data)
	if err != nil {
		return "", completedAction{}, false, err
	}
	if _, err := e.ledger.DetachExpense(ctx, userID, exp.ID); err != nil {
		return "", completedAction{}, false, err
	}
	return "detached expense " + exp.ID,
		completedAction{action: ActionDetachExpense, reversible: false},
		true, nil
}

func (e *Executor) applyCreateCategory(ctx context.Context, userID string, a Action) (string, completedAction, bool, error) {
	name, ok := stringField(a.Data, "name", "categoryName")
	if !ok {
		return "", completedAction{}, false, replyValidation("falta el nombre de la categoría")
	}
	cat, err := e.ledger.CreateCategory(ctx, userID, name)
	if err != nil {
		return "", completedAction{}, false, err
	}
	return "created category " + cat.ID,
		completedAction{action: ActionCreateCategory, createdID: cat.ID, reversible: false},
		true, nil
}

func (e *Executor) applyRenameCategory(ctx context.Context, userID string, a Action) (string, completedAction, bool, error) {
	ref := map[string]any{}
	if id, ok := stringField(a.Data, "categoryId"); ok {
		ref["categoryId"] = id
	}
	if name, ok := stringField(a.Data, "categoryName", "category"); ok {
		ref["categoryName"] = name
	}
	if len(ref) == 0 {
		return "", completedAction{}, false, replyValidation("falta la referencia a la categoría")
	}
	cat, err := e.resolveCategory(ctx, userID, ref)
	if err != nil {
		return "", completedAction{}, false, err
	}
	newName, ok := stringField(a.Data, "name", "newName")
	if !ok {
		return "", completedAction{}, false, replyValidation("falta el nuevo nombre de la categoría")
	}
	if _, err := e.ledger.RenameCategory(ctx, userID, cat.ID, newName); err != nil {
		return "", completedAction{}, false, err
	}
	return "renamed category " + cat.ID + " to " + newName,
		completedAction{action: ActionRenameCategory, reversible: false},
		true, nil
}

func (e *Executor) applyDeleteCategory(ctx context.Context, userID string, a Action) (string, completedAction, bool, error) {
	cat, err := e.resolveCategory(ctx, userID, a.Data)
	if err != nil {
		return "", completedAction{}, false, err
	}
	if err := e.ledger.DeleteCategory(ctx, userID, cat.ID); err != nil {
		return "", completedAction{}, false, err
	}
	return "deleted category " + cat.ID,
		completedAction{action: ActionDeleteCategory, reversible: false},
		true, nil
}

func (e *Executor) applyCreateNotification(ctx context.Context, userID string, a Action) (string, completedAction, bool, error) {
	message, ok := stringField(a.Data, "message")
	if !ok {
		return "", completedAction{}, false, replyValidation("falta el mensaje de la notificación")
	}

	input := ledger.CreateNotificationInput{Message: message}
	input.Type, _ = stringField(a.Data, "type")

	jobID, hasLink, err := e.resolveJobLink(ctx, userID, a.Data)
	if err != nil {
		return "", completedAction{}, false, err
	}
	if hasLink {
		input.JobID = jobID
	}

	notif, err := e.ledger.CreateNotification(ctx, userID, input)
	if err != nil {
		return "", completedAction{}, false, err
	}
	return "created notification " + notif.ID,
		completedAction{action: ActionCreateNotification, createdID: notif.ID, reversible: true},
		true, nil
}

func (e *Executor) applyMarkNotificationRead(ctx context.Context, userID string, a Action) (string, completedAction, bool, error) {
	id, ok := stringField(a.Data, "notificationId", "id")
	if !ok {
		return "", completedAction{}, false, replyValidation("falta la referencia a la notificación")
	}
	if _, err := e.ledger.MarkNotificationRead(ctx, userID, id); err != nil {
		return "", completedAction{}, false, err
	}
	return "marked notification " + id + " read",
		completedAction{action: ActionMarkNotificationRead, reversible: false},
		true, nil
}

func (e *Executor) applyDeleteNotification(ctx context.Context, userID string, a Action) (string, completedAction, bool, error) {
	id, ok := stringField(a.Data, "notificationId", "id")
	if !ok {
		return "", completedAction{}, false, replyValidation("falta la referencia a la notificación")
	}
	if err := e.ledger.DeleteNotification(ctx, userID, id); err != nil {
		return "", completedAction{}, false, err
	}
	return "deleted notification " + id,
		completedAction{action: ActionDeleteNotification, reversible: false},
		true, nil
}

// replyError marks an error whose message was written for the chat reply.
// Only these pass through to the user verbatim; errors from the service and
// domain layers carry English log text and must never reach the reply.
type replyError struct{ err error }

func (e replyError) Error() string { return e.err.Error() }
func (e replyError) Unwrap() error { return e.err }

func replyValidation(msg string) error { return replyError{err: appErrors.NewValidation(msg)} }
func replyNotFound(msg string) error   { return replyError{err: appErrors.NewNotFound(msg)} }

func failureMessage(index int, t ActionType, err error) string {
	return fmt.Sprintf("No pude completar la acción %d (%s): %s.", index+1, t, replyDetail(err))
}

func replyDetail(err error) string {
	var re replyError
	if errors.As(err, &re) {
		var app *appErrors.AppError
		if errors.As(re.err, &app) {
			return app.Message
		}
	}
	switch appErrors.TypeOf(err) {
	case appErrors.ErrorTypeValidation:
		return "los datos de la acción no son válidos"
	case appErrors.ErrorTypeNotFound:
		return "no encontré el registro indicado"
	case appErrors.ErrorTypeOwnership:
		return "ese registro pertenece a otra cuenta"
	case appErrors.ErrorTypePersistence:
		return "no pude guardar los cambios"
	case appErrors.ErrorTypeTimeout:
		return "la operación tardó demasiado"
	case appErrors.ErrorTypeUnavailable:
		return "el servicio no está disponible en este momento"
	case appErrors.ErrorTypeRateLimited:
		return "hay demasiadas solicitudes en este momento"
	default:
		return "ocurrió un error inesperado"
	}
}

func compensationMessage(attempted, rolledBack int) string {
	if attempted == 0 {
		return ""
	}
	if rolledBack == attempted {
		return fmt.Sprintf(" Revertí los %d cambios anteriores; tus datos quedaron como estaban.", attempted)
	}
	return fmt.Sprintf(" Pude revertir %d de %d cambios anteriores; algunos cambios persisten.", rolledBack, attempted)
}
