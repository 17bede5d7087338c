package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ledgerchat-backend/internal/domain"
	"ledgerchat-backend/pkg/api"
)

func TestComposePromptIncludesSnapshotWithTokens(t *testing.T) {
	snap := snapshotWith([]string{"Cocina"}, []string{"Cemento"})
	snap.Jobs[0].Revenue = 5000
	snap.Jobs[0].Profit = 5000
	snap.Jobs[0].Status = domain.JobStatusInProgress
	aliases := BuildAliasTable(snap)

	prompt := ComposePrompt(ComposeInput{
		Snapshot: snap,
		Aliases:  aliases,
		Now:      time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC),
	})

	assert.Contains(t, prompt, "JOB_01")
	assert.Contains(t, prompt, "EXP_01")
	// Display names never leak into the payload; the model only sees tokens.
	assert.NotContains(t, prompt, "- Cocina:")
}

func TestComposePromptTemporalContextUsesISOWeekBounds(t *testing.T) {
	// 2026-08-27 is a Thursday in ISO week 35 (Mon 24th to Sun 30th).
	prompt := ComposePrompt(ComposeInput{
		Snapshot: domain.Snapshot{},
		Aliases:  BuildAliasTable(domain.Snapshot{}),
		Now:      time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC),
	})

	assert.Contains(t, prompt, "Hoy es 2026-08-27.")
	assert.Contains(t, prompt, "del 2026-08-24 al 2026-08-30")
	assert.Contains(t, prompt, "del 2026-08-01 al 2026-08-31")
}

func TestComposePromptIncludesMemoryFactsAndReceipts(t *testing.T) {
	prompt := ComposePrompt(ComposeInput{
		Snapshot: domain.Snapshot{},
		Aliases:  BuildAliasTable(domain.Snapshot{}),
		Memory:   "El usuario prefiere resúmenes semanales.",
		Facts: []StateChangeFact{
			{Entity: EntityJob, Name: "Cocina", Kind: ChangeRecentlyDeleted},
		},
		Receipts: []api.Receipt{
			{Vendor: "Ferretería López", Total: 116.00, Date: "2026-08-21"},
		},
		Now: time.Now(),
	})

	assert.Contains(t, prompt, "resúmenes semanales")
	assert.Contains(t, prompt, "fue eliminado y ya no existe")
	assert.Contains(t, prompt, "Ferretería López")
}

func TestComposePromptListsEveryActionAndForbidsTokenLeak(t *testing.T) {
	prompt := ComposePrompt(ComposeInput{
		Snapshot: domain.Snapshot{},
		Aliases:  BuildAliasTable(domain.Snapshot{}),
		Now:      time.Now(),
	})

	for _, name := range actionNames {
		assert.Contains(t, prompt, name)
	}
	assert.Contains(t, prompt, "JOB_nn")
	assert.True(t, strings.Contains(prompt, "nunca debe contener"))
}
