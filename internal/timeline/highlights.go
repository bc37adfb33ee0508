package timeline

import (
	"fmt"
	"sort"
)

// Highlight kinds.
const (
	HighlightFirstBlood = "first_blood"
	HighlightStreak     = "kill_streak"
	HighlightBounty     = "big_bounty"
	HighlightPlate      = "turret_plate"
	HighlightObjective  = "epic_objective"
)

const (
	streakThreshold = 3
	bountyThreshold = 700
)

var epicMonsters = map[string]bool{
	"DRAGON":       true,
	"BARON_NASHOR": true,
	"RIFTHERALD":   true,
	"HORDE":        true,
	"ATAKHAN":      true,
}

// Highlight is one notable moment of a player's match.
type Highlight struct {
	Kind   string    `json:"kind"`
	At     Timestamp `json:"timestamp"`
	Clock  string    `json:"clock"`
	Detail string    `json:"detail"`
}

// Highlights extracts notable moments from pt in match-time order.
func Highlights(pt *ParticipantTimeline) []Highlight {
	if pt == nil {
		return nil
	}
	var out []Highlight
	add := func(kind string, at Timestamp, detail string) {
		out = append(out, Highlight{Kind: kind, At: at, Clock: at.String(), Detail: detail})
	}

	if pt.FirstBlood {
		add(HighlightFirstBlood, pt.FirstBloodAt, "drew first blood")
	}
	for _, k := range pt.Kills {
		if k.KillStreak >= streakThreshold {
			add(HighlightStreak, k.At, fmt.Sprintf("kill on a %d streak", k.KillStreak))
		}
		if k.Bounty >= bountyThreshold {
			add(HighlightBounty, k.At, fmt.Sprintf("collected a %d gold bounty", k.Bounty))
		}
	}
	for _, p := range pt.Plates {
		add(HighlightPlate, p.At, fmt.Sprintf("took a %s plate", laneName(p.LaneType)))
	}
	for _, m := range pt.Monsters {
		if m.KillerTeamID != pt.TeamID || !epicMonsters[m.MonsterType] {
			continue
		}
		name := m.MonsterType
		if m.MonsterSubType != "" {
			name = m.MonsterSubType
		}
		add(HighlightObjective, m.At, "team secured "+name)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].At < out[j].At })
	return out
}

func laneName(lane string) string {
	switch lane {
	case "TOP_LANE":
		return "top"
	case "MID_LANE":
		return "mid"
	case "BOT_LANE":
		return "bot"
	}
	if lane == "" {
		return "turret"
	}
	return lane
}
