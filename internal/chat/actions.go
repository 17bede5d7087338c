// Package chat implements the orchestration core: the alias codec, prompt
// composer, response interpreter, action executor with compensation, and the
// per-turn pipeline tying them together.
package chat

// ActionType is the closed taxonomy of actions the model may request.
// Validation of untrusted action-name strings happens once, at the input
// boundary (ParseActionType); everything past that point switches
// exhaustively over this type.
type ActionType int

const (
	ActionCreateJob ActionType = iota
	ActionUpdateJob
	ActionDeleteJob
	ActionUpdateJobStatus
	ActionCreateExpense
	ActionUpdateExpense
	ActionDeleteExpense
	ActionAttachExpense
	ActionDetachExpense
	ActionCreateCategory
	ActionRenameCategory
	ActionDeleteCategory
	ActionCreateNotification
	ActionMarkNotificationRead
	ActionDeleteNotification
	ActionQuery
)

var actionNames = map[ActionType]string{
	ActionCreateJob:            "create_job",
	ActionUpdateJob:            "update_job",
	ActionDeleteJob:            "delete_job",
	ActionUpdateJobStatus:      "update_job_status",
	ActionCreateExpense:        "create_expense",
	ActionUpdateExpense:        "update_expense",
	ActionDeleteExpense:        "delete_expense",
	ActionAttachExpense:        "attach_expense",
	ActionDetachExpense:        "detach_expense",
	ActionCreateCategory:       "create_category",
	ActionRenameCategory:       "rename_category",
	ActionDeleteCategory:       "delete_category",
	ActionCreateNotification:   "create_notification",
	ActionMarkNotificationRead: "mark_notification_read",
	ActionDeleteNotification:   "delete_notification",
	ActionQuery:                "query",
}

var actionsByName = func() map[string]ActionType {
	m := make(map[string]ActionType, len(actionNames))
	for t, name := range actionNames {
		m[name] = t
	}
	return m
}()

// String returns the wire name of the action.
func (t ActionType) String() string {
	return actionNames[t]
}

// IsMutation reports whether the action mutates state. Query is the only
// read-only action.
func (t ActionType) IsMutation() bool {
	return t != ActionQuery
}

// ParseActionType validates an untrusted action-name string.
func ParseActionType(name string) (ActionType, bool) {
	t, ok := actionsByName[name]
	return t, ok
}

// Action is a validated action ready for execution.
type Action struct {
	Type         ActionType
	Data         map[string]any
	Confirmation string
}
