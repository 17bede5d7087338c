package chat

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"ledgerchat-backend/internal/domain"
)

// AliasEntry maps one entity to its request-scoped token.
type AliasEntry struct {
	EntityID    string
	DisplayName string
	Token       string
}

// AliasTable is the ephemeral token table for a single orchestration turn.
// It is never persisted: tokens are rebuilt from the snapshot on every turn
// and must not be carried across turns. The table travels through the turn
// pipeline as an explicit value, never as shared state.
type AliasTable struct {
	entries []AliasEntry
	byToken map[string]AliasEntry
}

var tokenPattern = regexp.MustCompile(`(?i)\b(?:JOB|EXP)_\d+\b`)

// BuildAliasTable assigns JOB_nn / EXP_nn tokens, zero-padded, in snapshot
// order. Snapshot order is creation order, so the numbering is stable for
// the duration of the turn.
func BuildAliasTable(snap domain.Snapshot) *AliasTable {
	t := &AliasTable{byToken: make(map[string]AliasEntry)}
	for i, job := range snap.Jobs {
		t.add(AliasEntry{
			EntityID:    job.ID,
			DisplayName: job.Name,
			Token:       fmt.Sprintf("JOB_%02d", i+1),
		})
	}
	for i, exp := range snap.Expenses {
		t.add(AliasEntry{
			EntityID:    exp.ID,
			DisplayName: exp.Name,
			Token:       fmt.Sprintf("EXP_%02d", i+1),
		})
	}
	return t
}

func (t *AliasTable) add(e AliasEntry) {
	t.entries = append(t.entries, e)
	t.byToken[e.Token] = e
}

// Entries returns the table in token order.
func (t *AliasTable) Entries() []AliasEntry {
	return t.entries
}

// Lookup resolves a token (case-insensitive).
func (t *AliasTable) Lookup(token string) (AliasEntry, bool) {
	e, ok := t.byToken[normalizeToken(token)]
	return e, ok
}

// Encode substitutes every whole-word, case-insensitive occurrence of an
// entity's display name with its token. Longer names are substituted first
// so that "Plumbing A phase 2" wins over "Plumbing A".
func (t *AliasTable) Encode(text string) string {
	if text == "" || len(t.entries) == 0 {
		return text
	}
	ordered := make([]AliasEntry, len(t.entries))
	copy(ordered, t.entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].DisplayName) > len(ordered[j].DisplayName)
	})
	for _, e := range ordered {
		if e.DisplayName == "" {
			continue
		}
		text = replaceWhole(text, e.DisplayName, e.Token)
	}
	return text
}

// DecodeText restores display names in model-facing text. Tokens must never
// reach the user, so any token the table does not know is stripped rather
// than left in place. Replies without stray tokens keep their spacing and
// line breaks untouched.
func (t *AliasTable) DecodeText(text string) string {
	if text == "" {
		return text
	}
	stripped := false
	out := tokenPattern.ReplaceAllStringFunc(text, func(tok string) string {
		if e, ok := t.byToken[normalizeToken(tok)]; ok {
			return e.DisplayName
		}
		stripped = true
		return ""
	})
	if !stripped {
		return out
	}
	return strings.TrimSpace(spaceRuns.ReplaceAllString(out, " "))
}

var spaceRuns = regexp.MustCompile(`[ \t]{2,}`)

// RestoreParams rewrites tokens inside an action payload. Name-ish keys get
// the display name back; every other key resolves to the canonical entity id
// so the executor can prefer id resolution.
func (t *AliasTable) RestoreParams(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = t.restoreValue(k, v)
	}
	return out
}

func (t *AliasTable) restoreValue(key string, v any) any {
	switch val := v.(type) {
	case string:
		return t.restoreString(key, val)
	case map[string]any:
		return t.RestoreParams(val)
	case []any:
		restored := make([]any, len(val))
		for i, item := range val {
			restored[i] = t.restoreValue(key, item)
		}
		return restored
	default:
		return v
	}
}

func (t *AliasTable) restoreString(key, s string) string {
	return tokenPattern.ReplaceAllStringFunc(s, func(tok string) string {
		e, ok := t.byToken[normalizeToken(tok)]
		if !ok {
			return tok
		}
		if wantsDisplayName(key) {
			return e.DisplayName
		}
		return e.EntityID
	})
}

func wantsDisplayName(key string) bool {
	lower := strings.ToLower(key)
	return strings.Contains(lower, "name") || strings.Contains(lower, "title")
}

func normalizeToken(tok string) string {
	return strings.ToUpper(strings.TrimSpace(tok))
}

// replaceWhole replaces case-insensitive occurrences of needle bounded by
// non-alphanumeric runes. Display names routinely contain punctuation, so a
// regexp \b anchor is not usable here. The scan folds rune by rune instead
// of searching a lowered copy: lowercasing can change a rune's byte length
// (Ⱥ grows, İ shrinks), so every offset has to come from text itself.
func replaceWhole(text, needle, repl string) string {
	if needle == "" {
		return text
	}
	var b strings.Builder
	i := 0
	for i < len(text) {
		n, ok := foldPrefixLen(text[i:], needle)
		if ok && boundaryBefore(text, i) && boundaryAfter(text, i+n) {
			b.WriteString(repl)
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		b.WriteString(text[i : i+size])
		i += size
	}
	return b.String()
}

// foldPrefixLen reports whether s starts with needle under rune-wise case
// folding, returning the byte length of the matched prefix of s.
func foldPrefixLen(s, needle string) (int, bool) {
	i := 0
	for _, nr := range needle {
		if i >= len(s) {
			return 0, false
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.ToLower(r) != unicode.ToLower(nr) {
			return 0, false
		}
		i += size
	}
	return i, true
}

func boundaryBefore(s string, idx int) bool {
	if idx == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:idx])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, idx int) bool {
	if idx >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[idx:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
