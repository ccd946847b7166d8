// Package behavior derives conversational metrics from message history.
//
// Scoring is a pure function: no I/O, no randomness, and every metric is
// numerically bounded. The lexicons are deliberately small; the point is a
// stable, cheap signal for the modifier policy, not sentiment research.
package behavior

import (
	"strings"

	"github.com/parley-sim/parley/domain"
)

// Metrics are the derived behavioral scores for one conversation.
// Evasiveness and Contradiction are in [0,1]; Sentiment is in [-1,1].
type Metrics struct {
	Evasiveness   float64 `json:"evasiveness"`
	Contradiction float64 `json:"contradiction"`
	Sentiment     float64 `json:"sentiment"`
}

var hedgeMarkers = []string{
	"i don't know",
	"i don't remember",
	"i can't recall",
	"not sure",
	"maybe",
	"i guess",
	"possibly",
	"i'd rather not",
	"no comment",
	"why do you ask",
	"what does that have to do",
}

var contradictionMarkers = []string{
	"that's not what i said",
	"i never said",
	"actually, no",
	"wait, no",
	"i mean",
	"correction",
	"that's not true",
	"forget what i said",
}

var positiveWords = map[string]bool{
	"good": true, "great": true, "fine": true, "happy": true, "glad": true,
	"sure": true, "yes": true, "thanks": true, "thank": true, "okay": true,
	"agree": true, "right": true, "correct": true, "helpful": true,
}

var negativeWords = map[string]bool{
	"no": true, "never": true, "bad": true, "wrong": true, "angry": true,
	"hate": true, "stop": true, "refuse": true, "unfair": true, "ridiculous": true,
	"absurd": true, "stupid": true, "harassment": true, "threat": true, "scared": true,
	"upset": true, "annoyed": true, "done": true,
}

// Score computes metrics over the full message history. Evasiveness and
// contradiction are scored on assistant turns (the simulated subject);
// sentiment is scored over every turn. An empty history scores zero on all
// axes.
func Score(messages []domain.Message) Metrics {
	var m Metrics
	var assistantTurns, evasiveTurns, contradictoryTurns int
	var positive, negative int

	for _, msg := range messages {
		text := strings.ToLower(msg.Content)

		for _, word := range strings.FieldsFunc(text, func(r rune) bool {
			return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '\''
		}) {
			if positiveWords[word] {
				positive++
			}
			if negativeWords[word] {
				negative++
			}
		}

		if msg.Role != domain.RoleAssistant {
			continue
		}
		assistantTurns++
		if containsAny(text, hedgeMarkers) {
			evasiveTurns++
		}
		if containsAny(text, contradictionMarkers) {
			contradictoryTurns++
		}
	}

	if assistantTurns > 0 {
		m.Evasiveness = float64(evasiveTurns) / float64(assistantTurns)
		m.Contradiction = float64(contradictoryTurns) / float64(assistantTurns)
	}
	if positive+negative > 0 {
		m.Sentiment = float64(positive-negative) / float64(positive+negative)
	}
	return m
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
