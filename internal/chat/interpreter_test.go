package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ledgerchat-backend/internal/domain"
)

func newTestInterpreter() *Interpreter {
	return NewInterpreter(zap.NewNop())
}

func emptyAliases() *AliasTable {
	return BuildAliasTable(domain.Snapshot{})
}

func TestInterpretFencedJSON(t *testing.T) {
	raw := "```json\n{\"text\": \"¡Listo! Registré el trabajo Cocina con sus datos.\", \"actions\": [{\"action\": \"create_job\", \"data\": {\"name\": \"Cocina\", \"revenue\": 5000}}]}\n```"

	out := newTestInterpreter().Interpret(raw, emptyAliases())

	assert.Equal(t, "¡Listo! Registré el trabajo Cocina con sus datos.", out.Text)
	require.Len(t, out.Actions, 1)
	assert.Equal(t, ActionCreateJob, out.Actions[0].Type)
	assert.Equal(t, 5000.0, out.Actions[0].Data["revenue"])
}

func TestInterpretBalancedBracesWithoutFence(t *testing.T) {
	raw := `Claro, aquí va: {"text": "Eliminé el gasto Cemento de tu registro.", "actions": [{"action": "delete_expense", "data": {"expenseName": "Cemento"}}]} espero que sirva`

	out := newTestInterpreter().Interpret(raw, emptyAliases())

	assert.Equal(t, "Eliminé el gasto Cemento de tu registro.", out.Text)
	require.Len(t, out.Actions, 1)
	assert.Equal(t, ActionDeleteExpense, out.Actions[0].Type)
}

func TestInterpretSalvagesPlainText(t *testing.T) {
	raw := "No encontré ese trabajo en tus registros, ¿puedes confirmarme el nombre?"

	out := newTestInterpreter().Interpret(raw, emptyAliases())

	assert.Equal(t, raw, out.Text)
	assert.Empty(t, out.Actions)
}

func TestInterpretNeverReturnsEmptyText(t *testing.T) {
	cases := []string{
		"",
		"{broken json",
		"```\n{\"text\": \n```",
		"{]",
	}
	for _, raw := range cases {
		out := newTestInterpreter().Interpret(raw, emptyAliases())
		assert.NotEmpty(t, out.Text, "raw=%q", raw)
	}
}

func TestInterpretDropsMalformedActions(t *testing.T) {
	raw := `{"text": "Registré el gasto Cemento y revisé lo demás, todo quedó en orden.", "actions": [
		{"action": "create_expense", "data": {"name": "Cemento", "amount": 250}},
		{"action": "explode_database", "data": {"x": 1}},
		{"action": "update_job"}
	]}`

	out := newTestInterpreter().Interpret(raw, emptyAliases())

	require.Len(t, out.Actions, 1)
	assert.Equal(t, ActionCreateExpense, out.Actions[0].Type)
}

func TestInterpretSynthesizesConfirmationWhenTextTooPoor(t *testing.T) {
	raw := `{"text": "ok", "actions": [{"action": "create_job", "data": {"name": "Cocina", "revenue": 5000}}]}`

	out := newTestInterpreter().Interpret(raw, emptyAliases())

	assert.True(t, out.Repaired)
	assert.Equal(t, "Registré el trabajo Cocina.", out.Text)
}

func TestInterpretStripsAliasTokensFromReply(t *testing.T) {
	table := BuildAliasTable(snapshotWith([]string{"Cocina"}, nil))
	raw := `{"text": "Actualicé el trabajo JOB_01 y quedó registrado correctamente.", "actions": [{"action": "update_job", "data": {"jobId": "JOB_01", "revenue": 6000}}]}`

	out := newTestInterpreter().Interpret(raw, table)

	assert.NotContains(t, out.Text, "JOB_01")
	assert.Contains(t, out.Text, "Cocina")
	require.Len(t, out.Actions, 1)
	assert.Equal(t, "job-Cocina", out.Actions[0].Data["jobId"])
}

func TestInterpretFallsBackToCannedApology(t *testing.T) {
	out := newTestInterpreter().Interpret("{\"text\": \"\", \"actions\": []}", emptyAliases())

	assert.Equal(t, cannedApology, out.Text)
	assert.True(t, out.Repaired)
}

func TestScoreReplyRubric(t *testing.T) {
	assert.Zero(t, scoreReply(""))
	assert.GreaterOrEqual(t, scoreReply("¡Listo! Registré el gasto Cemento por 250."), acceptThreshold)
	assert.Less(t, scoreReply("{\"text\": ok}"), acceptThreshold)
	assert.Less(t, scoreReply("ok"), hardFloor)
}
