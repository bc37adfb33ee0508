package timeline

import (
	"rift-rewind/internal/riot"
)

// ParticipantTimeline is one player's view of a finished match. It is built
// by the match aggregator and not modified afterwards.
type ParticipantTimeline struct {
	MatchID       string `json:"matchId"`
	PUUID         string `json:"puuid"`
	ParticipantID int    `json:"participantId"`
	Champion      string `json:"champion"`
	TeamID        int    `json:"teamId"`
	Role          string `json:"role"`
	GameMode      string `json:"gameMode"`
	DurationS     int    `json:"durationS"`
	Win           bool   `json:"win"`

	KillCount    int       `json:"killCount"`
	DeathCount   int       `json:"deathCount"`
	AssistCount  int       `json:"assistCount"`
	FirstBlood   bool      `json:"firstBlood"`
	FirstBloodAt Timestamp `json:"firstBloodAt,omitempty"`

	Sequences
}

type phase int

const (
	// phaseBaseline consumes the first frame as a resource-only snapshot.
	phaseBaseline phase = iota
	// phaseAccumulating classifies events of every later frame.
	phaseAccumulating
)

// Match aggregates every frame of timeline for the player identified by puuid.
// It reports false when the player is not part of the match.
func (g Aggregator) Match(match *riot.MatchResponse, tl *riot.TimelineResponse, puuid string) (*ParticipantTimeline, bool) {
	if match == nil || tl == nil {
		return nil, false
	}
	participant, ok := match.FindParticipant(puuid)
	if !ok {
		g.logger().Info("player not in match", "match", match.Metadata.MatchID)
		return nil, false
	}
	id := participant.ParticipantID
	if id == 0 {
		id = timelineParticipantID(tl, puuid)
	}
	if id == 0 {
		g.logger().Warn("no participant id for player", "match", match.Metadata.MatchID)
		return nil, false
	}

	acc := NewAccumulator()
	state := phaseBaseline
	for _, frame := range tl.Info.Frames {
		switch state {
		case phaseBaseline:
			g.resources(frame, id, acc)
			state = phaseAccumulating
		case phaseAccumulating:
			g.Frame(frame, id, acc)
		}
	}

	return &ParticipantTimeline{
		MatchID:       match.Metadata.MatchID,
		PUUID:         puuid,
		ParticipantID: id,
		Champion:      participant.ChampionName,
		TeamID:        participant.TeamID,
		Role:          participant.Position(),
		GameMode:      match.Info.GameMode,
		DurationS:     match.Info.GameDuration,
		Win:           participant.Win,
		KillCount:     len(acc.Kills),
		DeathCount:    len(acc.Deaths),
		AssistCount:   len(acc.Assists),
		FirstBlood:    acc.FirstBlood,
		FirstBloodAt:  acc.FirstBloodAt,
		Sequences:     acc.Sequences,
	}, true
}

// AggregateMatch runs a silent Aggregator over one match.
func AggregateMatch(match *riot.MatchResponse, tl *riot.TimelineResponse, puuid string) (*ParticipantTimeline, bool) {
	return Aggregator{}.Match(match, tl, puuid)
}

func timelineParticipantID(tl *riot.TimelineResponse, puuid string) int {
	for _, p := range tl.Info.Participants {
		if p.PUUID == puuid {
			return p.ParticipantID
		}
	}
	return 0
}
