package chat

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Quality gate. A reply scoring at or above acceptThreshold is used as-is;
// between the two bounds it is repaired (tokens stripped, confirmations
// synthesized); below hardFloor the canned fallback replaces it.
const (
	acceptThreshold = 70
	hardFloor       = 40
)

const cannedApology = "Lo siento, tuve un problema para entender la respuesta. ¿Puedes repetirme lo que necesitas?"

// Interpretation is the result of turning raw model output into a usable
// reply plus validated actions. Text is never empty.
type Interpretation struct {
	Text     string
	Actions  []Action
	Score    int
	Repaired bool
}

type rawReply struct {
	Text    string      `json:"text"`
	Actions []rawAction `json:"actions"`
}

type rawAction struct {
	Action              string         `json:"action"`
	Data                map[string]any `json:"data"`
	ConfirmationMessage string         `json:"confirmationMessage"`
}

// Interpreter extracts, validates, scores and repairs model output.
type Interpreter struct {
	logger *zap.Logger
}

func NewInterpreter(logger *zap.Logger) *Interpreter {
	return &Interpreter{logger: logger}
}

// Interpret runs the extraction fallback chain over raw model text. Each
// step is a fallback for the previous one; the final result always carries a
// non-empty reply, even if only the canned apology.
func (it *Interpreter) Interpret(raw string, aliases *AliasTable) Interpretation {
	candidate, found := extractJSONObject(raw)

	var reply rawReply
	parsed := false
	if found {
		if err := json.Unmarshal([]byte(candidate), &reply); err == nil {
			parsed = true
		} else {
			it.logger.Debug("model reply JSON did not parse", zap.Error(err))
		}
	}

	if !parsed {
		// Plain-text salvage: replies with no structural characters are
		// taken verbatim as the text field.
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" && !strings.ContainsAny(trimmed, "{}[]`") {
			reply = rawReply{Text: trimmed}
		} else {
			it.logger.Warn("model reply unsalvageable, using canned apology")
			return Interpretation{Text: cannedApology, Score: 0, Repaired: true}
		}
	}

	actions := it.validateActions(reply.Actions, aliases)

	score := scoreReply(reply.Text)
	text := reply.Text
	repaired := false

	if score < acceptThreshold {
		// Token leakage and stray fences are repairable without touching
		// the model's wording.
		cleaned := cleanupText(text, aliases)
		if cleaned != text {
			text = cleaned
			repaired = true
			score = scoreReply(text)
		}
	}

	if score < acceptThreshold && len(actions) > 0 {
		// The action list is trustworthy even when the prose is not:
		// synthesize one confirmation sentence per action.
		text = synthesizeConfirmations(actions)
		repaired = true
		score = scoreReply(text)
	}

	if score < hardFloor || strings.TrimSpace(text) == "" {
		it.logger.Warn("model reply below quality floor", zap.Int("score", score))
		text = fallbackText(actions)
		repaired = true
	} else {
		text = aliases.DecodeText(text)
	}

	return Interpretation{Text: text, Actions: actions, Score: score, Repaired: repaired}
}

// validateActions drops unsupported or malformed action objects instead of
// aborting interpretation, and restores alias tokens inside payloads.
func (it *Interpreter) validateActions(raws []rawAction, aliases *AliasTable) []Action {
	var out []Action
	for _, r := range raws {
		name := strings.ToLower(strings.TrimSpace(r.Action))
		t, ok := ParseActionType(name)
		if !ok {
			it.logger.Debug("dropping unsupported action", zap.String("action", r.Action))
			continue
		}
		if t != ActionQuery && len(r.Data) == 0 {
			it.logger.Debug("dropping action with empty payload", zap.String("action", name))
			continue
		}
		out = append(out, Action{
			Type:         t,
			Data:         aliases.RestoreParams(r.Data),
			Confirmation: aliases.DecodeText(r.ConfirmationMessage),
		})
	}
	return out
}

// extractJSONObject tries a fenced code block first, then the first balanced
// brace-delimited object anywhere in the text.
func extractJSONObject(raw string) (string, bool) {
	if block, ok := fencedBlock(raw); ok {
		if obj, ok := balancedObject(block); ok {
			return obj, true
		}
	}
	return balancedObject(raw)
}

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

func fencedBlock(raw string) (string, bool) {
	m := fencePattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// balancedObject scans for the first '{' and returns the substring up to its
// matching close brace, tracking string literals and escapes.
func balancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// englishLeakage flags technical or English fragments that should never
// appear in a conversational Spanish reply.
var englishLeakage = []string{
	"successfully", "error:", "undefined", "null", "the job", "the expense",
	"created", "deleted", "updated", "i have", "action",
}

// spanishMarkers reward the register the assistant is supposed to use.
var spanishMarkers = []string{
	"¡", "¿", "é", "á", "í", "ó", "ú", "ñ",
	" listo", " trabajo", " gasto", " registré", " eliminé", " actualicé", " he ",
}

// scoreReply rates a reply 0-100 against the format and language rubric.
func scoreReply(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	score := 100

	if strings.ContainsAny(trimmed, "{}[]") || strings.Contains(trimmed, "```") {
		score -= 25
	}
	if tokenPattern.MatchString(trimmed) {
		score -= 20
	}

	// Very short replies are almost always truncation or a bare "ok";
	// they fall below the hard floor on their own.
	switch n := utf8.RuneCountInString(trimmed); {
	case n < 10:
		score -= 70
	case n < 20:
		score -= 20
	}

	lower := strings.ToLower(trimmed)
	penalty := 0
	for _, frag := range englishLeakage {
		if strings.Contains(lower, frag) {
			penalty += 10
		}
	}
	if penalty > 30 {
		penalty = 30
	}
	score -= penalty

	bonus := 0
	for _, marker := range spanishMarkers {
		if strings.Contains(lower, marker) {
			bonus += 5
		}
	}
	if bonus > 20 {
		bonus = 20
	}
	score += bonus

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// cleanupText strips fences, stray braces and leftover alias tokens.
func cleanupText(text string, aliases *AliasTable) string {
	text = strings.ReplaceAll(text, "```", "")
	text = aliases.DecodeText(text)
	text = strings.Trim(text, "{}[] \n\t")
	return strings.TrimSpace(text)
}

// confirmationPhrases is the deterministic phrase table used when the
// model's prose fails validation but its actions are well-formed.
var confirmationPhrases = map[ActionType]string{
	ActionCreateJob:            "Registré el trabajo %s.",
	ActionUpdateJob:            "Actualicé el trabajo %s.",
	ActionDeleteJob:            "Eliminé el trabajo %s.",
	ActionUpdateJobStatus:      "Cambié el estado del trabajo %s.",
	ActionCreateExpense:        "Registré el gasto %s.",
	ActionUpdateExpense:        "Actualicé el gasto %s.",
	ActionDeleteExpense:        "Eliminé el gasto %s.",
	ActionAttachExpense:        "Vinculé el gasto al trabajo.",
	ActionDetachExpense:        "Desvinculé el gasto del trabajo.",
	ActionCreateCategory:       "Creé la categoría %s.",
	ActionRenameCategory:       "Renombré la categoría a %s.",
	ActionDeleteCategory:       "Eliminé la categoría %s.",
	ActionCreateNotification:   "Creé el recordatorio.",
	ActionMarkNotificationRead: "Marqué la notificación como leída.",
	ActionDeleteNotification:   "Eliminé la notificación.",
	ActionQuery:                "Aquí tienes la información.",
}

func synthesizeConfirmations(actions []Action) string {
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		if a.Confirmation != "" {
			parts = append(parts, a.Confirmation)
			continue
		}
		phrase := confirmationPhrases[a.Type]
		if strings.Contains(phrase, "%s") {
			name := payloadName(a.Data)
			if name == "" {
				phrase = strings.TrimSpace(strings.ReplaceAll(phrase, " %s", ""))
			} else {
				phrase = fmt.Sprintf(phrase, name)
			}
		}
		parts = append(parts, phrase)
	}
	return strings.Join(parts, " ")
}

func payloadName(data map[string]any) string {
	for _, key := range []string{"name", "jobName", "expenseName", "categoryName"} {
		if v, ok := data[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func fallbackText(actions []Action) string {
	if len(actions) > 0 {
		return synthesizeConfirmations(actions)
	}
	return cannedApology
}
