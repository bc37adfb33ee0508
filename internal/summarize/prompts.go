package summarize

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

const coachSystem = "You are an honest but constructive League of Legends coach. " +
	"You receive aggregated stats and optionally deltas vs higher-tier medians. " +
	"Explain strengths, weaknesses and 3-5 concrete habits to focus on. " +
	"Be short, lane-specific and actionable. Avoid generic advice."

const lineupSystem = "You are a concise League of Legends coach. Compare CURRENT vs HISTORICAL " +
	"with the SAME lineup. Use only provided JSON. Output at most 120 words and exactly " +
	"three bullet action items. No fluff."

const highlightSystem = "You are a League of Legends caster. Turn the timeline highlights you are " +
	"given into a short, vivid recap of the player's game in at most 80 words. " +
	"Use only the provided JSON."

// CoachingRequest asks for coaching on a player overview, optionally against
// higher-tier deltas.
func CoachingRequest(overview any, laneHint string, deltas any) (Request, error) {
	system := coachSystem
	if laneHint != "" {
		system += fmt.Sprintf(" The player mainly plays %s.", laneHint)
	}

	data, err := json.MarshalIndent(overview, "", "  ")
	if err != nil {
		return Request{}, fmt.Errorf("encode overview: %w", err)
	}
	var b strings.Builder
	b.WriteString("Overview JSON:\n")
	b.Write(data)
	if deltas != nil {
		d, err := json.MarshalIndent(deltas, "", "  ")
		if err != nil {
			return Request{}, fmt.Errorf("encode deltas: %w", err)
		}
		b.WriteString("\n\nDeltas vs higher-tier medians:\n")
		b.Write(d)
	}
	return Request{System: system, Prompt: b.String(), MaxTokens: 300, Temperature: 0.6}, nil
}

// LineupRequest asks for a blurb comparing a posted lineup with the indexed
// historical match that shares its fingerprint.
func LineupRequest(lineupKey string, current, historical any) (Request, error) {
	payload := map[string]any{
		"task":       "lineup_exact_match_compare",
		"lineup_key": lineupKey,
		"current":    current,
		"historical": historical,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Request{}, fmt.Errorf("encode lineup payload: %w", err)
	}
	prompt := "JSON:\n" + string(data) + "\n\nInstructions:\n" +
		"1) State which team won in CURRENT and HISTORICAL.\n" +
		"2) Name two biggest statistical deltas.\n" +
		"3) Give exactly 3 bullet fixes for CURRENT to match the better outcome."
	return Request{System: lineupSystem, Prompt: prompt, MaxTokens: 300, Temperature: 0.2}, nil
}

// HighlightRequest asks for a short recap of one game's highlight moments.
func HighlightRequest(champion string, highlights any) (Request, error) {
	data, err := json.Marshal(map[string]any{"champion": champion, "highlights": highlights})
	if err != nil {
		return Request{}, fmt.Errorf("encode highlights: %w", err)
	}
	return Request{System: highlightSystem, Prompt: "JSON:\n" + string(data), MaxTokens: 200, Temperature: 0.7}, nil
}
