package chat

import (
	"regexp"
	"strings"

	"ledgerchat-backend/internal/domain"
	"ledgerchat-backend/pkg/api"
)

// EntityKind identifies which record family a state-change fact refers to.
type EntityKind int

const (
	EntityJob EntityKind = iota
	EntityExpense
)

func (k EntityKind) String() string {
	if k == EntityJob {
		return "job"
	}
	return "expense"
}

// ChangeKind classifies a fact after cross-checking against the snapshot.
type ChangeKind int

const (
	// ChangeRecentlyDeleted: the conversation mentions the entity as
	// deleted and it no longer exists in the snapshot.
	ChangeRecentlyDeleted ChangeKind = iota
	// ChangeRecentlyCreated: the conversation mentions the entity as
	// created and a record with that name currently exists.
	ChangeRecentlyCreated
)

// StateChangeFact is one disambiguation hint for the prompt composer. When
// an entity was deleted and recreated under the same name, CurrentID names
// the record that exists now, so the model can be told which of the two
// same-named entities is current.
type StateChangeFact struct {
	Entity    EntityKind
	Name      string
	Kind      ChangeKind
	CurrentID string
}

// stateChangeWindow bounds how far back in the conversation the extractor
// looks. Older turns describe state too stale to disambiguate anything.
const stateChangeWindow = 10

// Phrase families for "<verb> <entity> <name>" and "<entity> <name> <verb>"
// in the conversational registers the assistant and its users actually
// produce. Verb stems use \p{L} because accented conjugations ("eliminé",
// "creé") fall outside \w. This is a best-effort heuristic, not ground
// truth: phrasings outside these families are simply not extracted.
var (
	verbEntityNamePattern = regexp.MustCompile(
		`(?i)(?:he\s+|has\s+|fue\s+)?((?:elimin|borr|cre|agreg|añad|registr)\p{L}*|deleted|removed|created|added)\s+(?:el\s+|la\s+|un\s+|una\s+|the\s+|a\s+)?(trabajo|gasto|job|expense)\s+[«"“']?([^«»"”'\n.,;:]+)`)
	entityNameVerbPattern = regexp.MustCompile(
		`(?i)(trabajo|gasto|job|expense)\s+[«"“']?([^«»"”'\n.,;:]+?)[»"”']?\s+(?:fue\s+|ha\s+sido\s+|was\s+|has\s+been\s+)?((?:eliminad|borrad|cread|agregad|añadid|registrad)\p{L}*|deleted|removed|created|added)`)
)

// trailingStopwords are function words and filler commonly trailing the
// entity name in a phrase ("el trabajo Cocina de tus registros"). They are
// trimmed from the end of a captured name. A real entity name ending in one
// of these gets mangled; the snapshot prefix check below usually recovers it.
var trailingStopwords = map[string]bool{
	"de": true, "del": true, "el": true, "la": true, "los": true, "las": true,
	"tus": true, "sus": true, "mis": true, "tu": true, "su": true, "mi": true,
	"registro": true, "registros": true, "lista": true, "cuentas": true,
	"nuevo": true, "nueva": true, "nuevamente": true, "otra": true, "otro": true,
	"vez": true, "ya": true, "hoy": true, "ahora": true, "también": true,
	"por": true, "favor": true, "again": true, "please": true, "now": true,
}

// normalizeCandidateName trims trailing filler and, when possible, snaps the
// candidate to an existing snapshot name that prefixes it.
func normalizeCandidateName(snap domain.Snapshot, entity EntityKind, raw string) string {
	words := strings.Fields(raw)
	for len(words) > 1 && trailingStopwords[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	name := strings.Join(words, " ")

	// Prefer the longest existing entity name that is a word prefix of the
	// candidate, e.g. "Cocina fase 2 otra vez" snaps to "Cocina fase 2".
	for n := len(words); n >= 1; n-- {
		prefix := strings.Join(words[:n], " ")
		if lookupByName(snap, entity, prefix) != "" {
			return prefix
		}
	}
	return name
}

// ExtractStateChanges scans the most recent history window for
// creation/deletion phrases and cross-checks each candidate against the
// current snapshot. The snapshot, not the phrasing, decides the
// classification: a "deleted" mention of a name that exists now means the
// entity was recreated.
func ExtractStateChanges(history []api.ChatMessage, snap domain.Snapshot) []StateChangeFact {
	if len(history) > stateChangeWindow {
		history = history[len(history)-stateChangeWindow:]
	}

	type candidate struct {
		entity EntityKind
		name   string
	}
	seen := make(map[string]bool)
	var candidates []candidate

	collect := func(entityWord, name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		entity := EntityJob
		switch strings.ToLower(entityWord) {
		case "gasto", "expense":
			entity = EntityExpense
		}
		name = normalizeCandidateName(snap, entity, name)
		if name == "" {
			return
		}
		key := entity.String() + "\x00" + strings.ToLower(name)
		if seen[key] {
			return
		}
		seen[key] = true
		candidates = append(candidates, candidate{entity: entity, name: name})
	}

	for _, msg := range history {
		for _, m := range verbEntityNamePattern.FindAllStringSubmatch(msg.Content, -1) {
			collect(m[2], m[3])
		}
		for _, m := range entityNameVerbPattern.FindAllStringSubmatch(msg.Content, -1) {
			collect(m[1], m[2])
		}
	}

	var facts []StateChangeFact
	for _, c := range candidates {
		currentID := lookupByName(snap, c.entity, c.name)
		if currentID == "" {
			facts = append(facts, StateChangeFact{
				Entity: c.entity,
				Name:   c.name,
				Kind:   ChangeRecentlyDeleted,
			})
			continue
		}
		facts = append(facts, StateChangeFact{
			Entity:    c.entity,
			Name:      c.name,
			Kind:      ChangeRecentlyCreated,
			CurrentID: currentID,
		})
	}
	return facts
}

// lookupByName returns the id of the newest record matching name. Creation
// order means the last match is the most recent, which is what matters for
// the deleted-then-recreated case.
func lookupByName(snap domain.Snapshot, entity EntityKind, name string) string {
	id := ""
	if entity == EntityJob {
		for _, j := range snap.Jobs {
			if strings.EqualFold(j.Name, name) {
				id = j.ID
			}
		}
		return id
	}
	for _, e := range snap.Expenses {
		if strings.EqualFold(e.Name, name) {
			id = e.ID
		}
	}
	return id
}
