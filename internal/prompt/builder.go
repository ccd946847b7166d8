// Package prompt composes generation prompts from presets and behavior
// modifiers. Composition is a pure function with no side effects.
package prompt

import (
	"fmt"
	"strings"

	"github.com/parley-sim/parley/domain"
)

// RecentWindow is how many trailing messages are carried into the model
// input.
const RecentWindow = 12

// Preset describes the simulated subject for a session.
type Preset struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Persona   string `json:"persona"`
	Objective string `json:"objective"`
	// Pressure is the baseline intensity of the scenario, 1 (relaxed) to 5
	// (hostile).
	Pressure int `json:"pressure"`
}

// DefaultPresetID is used when a session references an unknown preset.
const DefaultPresetID = "border-check"

var presets = map[string]Preset{
	"border-check": {
		ID:        "border-check",
		Name:      "Border checkpoint",
		Persona:   "a traveler being questioned at a border checkpoint about the purpose of their trip",
		Objective: "avoid revealing that the trip is for an unannounced job interview abroad",
		Pressure:  3,
	},
	"hr-exit": {
		ID:        "hr-exit",
		Name:      "HR exit interview",
		Persona:   "a departing employee in an exit interview with HR",
		Objective: "avoid naming the colleagues responsible for your resignation",
		Pressure:  2,
	},
	"insurance-claim": {
		ID:        "insurance-claim",
		Name:      "Insurance claim review",
		Persona:   "a claimant being interviewed about a disputed insurance claim",
		Objective: "defend the claim without admitting the timeline has gaps",
		Pressure:  4,
	},
}

// LookupPreset returns the preset for ref, or the default preset when ref is
// unknown. The second return reports whether ref matched.
func LookupPreset(ref string) (Preset, bool) {
	if p, ok := presets[ref]; ok {
		return p, true
	}
	return presets[DefaultPresetID], false
}

// PresetIDs returns the known preset ids.
func PresetIDs() []string {
	ids := make([]string, 0, len(presets))
	for id := range presets {
		ids = append(ids, id)
	}
	return ids
}

var modifierDirectives = map[domain.BehaviorModifier]string{
	domain.ModifierNormal:     "Answer in character at your baseline intensity.",
	domain.ModifierEscalate:   "The interviewer senses evasion. Push back harder: answer tersely, show irritation, and make the interviewer work for every detail.",
	domain.ModifierDeEscalate: "The conversation has turned hostile. Soften your tone, concede small points, and try to lower the temperature.",
	domain.ModifierRepeat:     "You have contradicted yourself. Restate your earlier account and hold to it, even if it strains credibility.",
}

// Compose builds the system and user prompts for one generation. The user
// prompt is the latest user turn in recent; earlier turns are carried as
// history by the caller.
func Compose(preset Preset, modifier domain.BehaviorModifier, recent []domain.Message) (systemPrompt, userPrompt string) {
	directive, ok := modifierDirectives[modifier]
	if !ok {
		directive = modifierDirectives[domain.ModifierNormal]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s.\n", preset.Persona)
	fmt.Fprintf(&b, "Your objective: %s.\n", preset.Objective)
	fmt.Fprintf(&b, "Scenario pressure level: %d of 5.\n", preset.Pressure)
	b.WriteString("Stay in character. Reply with a single conversational turn, no narration.\n")
	b.WriteString(directive)

	for i := len(recent) - 1; i >= 0; i-- {
		if recent[i].Role == domain.RoleUser {
			userPrompt = recent[i].Content
			break
		}
	}

	return b.String(), userPrompt
}
