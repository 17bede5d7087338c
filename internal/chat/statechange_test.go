package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerchat-backend/pkg/api"
)

func TestExtractStateChangesClassifiesDeletedEntity(t *testing.T) {
	history := []api.ChatMessage{
		{Role: "user", Content: "elimina el trabajo Cocina"},
		{Role: "assistant", Content: "Eliminé el trabajo Cocina de tus registros."},
	}
	snap := snapshotWith(nil, nil)

	facts := ExtractStateChanges(history, snap)

	require.Len(t, facts, 1)
	assert.Equal(t, EntityJob, facts[0].Entity)
	assert.Equal(t, "Cocina", facts[0].Name)
	assert.Equal(t, ChangeRecentlyDeleted, facts[0].Kind)
	assert.Empty(t, facts[0].CurrentID)
}

func TestExtractStateChangesResolvesRecreatedEntityToCurrentID(t *testing.T) {
	// Deleted and recreated under the same name: the snapshot holds the
	// second record, so the fact must point at it.
	history := []api.ChatMessage{
		{Role: "assistant", Content: "Eliminé el trabajo Cocina."},
		{Role: "user", Content: "crea el trabajo Cocina de nuevo"},
		{Role: "assistant", Content: "He creado el trabajo Cocina otra vez."},
	}
	snap := snapshotWith([]string{"Cocina"}, nil)

	facts := ExtractStateChanges(history, snap)

	require.Len(t, facts, 1)
	assert.Equal(t, ChangeRecentlyCreated, facts[0].Kind)
	assert.Equal(t, "job-Cocina", facts[0].CurrentID)
}

func TestExtractStateChangesHandlesExpensesAndEnglishPhrasing(t *testing.T) {
	history := []api.ChatMessage{
		{Role: "assistant", Content: "I deleted the expense Cemento."},
	}
	snap := snapshotWith(nil, nil)

	facts := ExtractStateChanges(history, snap)

	require.Len(t, facts, 1)
	assert.Equal(t, EntityExpense, facts[0].Entity)
	assert.Equal(t, ChangeRecentlyDeleted, facts[0].Kind)
}

func TestExtractStateChangesIgnoresOldTurnsOutsideWindow(t *testing.T) {
	history := make([]api.ChatMessage, 0, stateChangeWindow+1)
	history = append(history, api.ChatMessage{Role: "assistant", Content: "Eliminé el trabajo Viejo."})
	for i := 0; i < stateChangeWindow; i++ {
		history = append(history, api.ChatMessage{Role: "user", Content: "¿cómo van mis cuentas?"})
	}

	facts := ExtractStateChanges(history, snapshotWith(nil, nil))
	assert.Empty(t, facts)
}

func TestExtractStateChangesNoPhrasesNoFacts(t *testing.T) {
	history := []api.ChatMessage{
		{Role: "user", Content: "¿cuánto gasté esta semana?"},
	}
	facts := ExtractStateChanges(history, snapshotWith([]string{"Cocina"}, nil))
	assert.Empty(t, facts)
}
