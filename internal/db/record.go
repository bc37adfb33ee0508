package db

import (
	"context"
	"errors"
	"time"

	"rift-rewind/internal/lineup"
	"rift-rewind/internal/riot"
)

// ErrNotFound is returned when no record exists for a lineup key.
var ErrNotFound = errors.New("lineup index: not found")

// SideStats sums one side's box score.
type SideStats struct {
	Kills   int  `json:"kills"`
	Deaths  int  `json:"deaths"`
	Assists int  `json:"assists"`
	CS      int  `json:"cs"`
	Gold    int  `json:"gold"`
	Win     bool `json:"win"`
}

// Summary is the precomputed row stored with each lineup record.
type Summary struct {
	MatchID   string    `json:"match_id"`
	QueueID   int       `json:"queue_id"`
	DurationS int       `json:"duration_s"`
	Blue      SideStats `json:"blue"`
	Red       SideStats `json:"red"`
}

// Record is one historical match indexed by its lineup fingerprint.
type Record struct {
	LineupKey string    `json:"lineup_key"`
	MatchID   string    `json:"match_id"`
	QueueID   int       `json:"queue_id"`
	DurationS int       `json:"duration_s"`
	StartMs   int64     `json:"start_ms"`
	Summary   Summary   `json:"summary"`
	IndexedAt time.Time `json:"indexed_at"`
}

// Index is the lineup lookup store.
type Index interface {
	CreateTables(ctx context.Context) error
	PutRecords(ctx context.Context, recs []Record) error
	// Get returns the most recent record for key.
	Get(ctx context.Context, key string) (*Record, error)
	List(ctx context.Context, key string, limit int) ([]Record, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// NormalizedPlayer is one line-up slot with its box score, as written by the
// collector.
type NormalizedPlayer struct {
	Side     lineup.Side `json:"side"`
	Role     string      `json:"role"`
	Champion string      `json:"champ"`
	PUUID    string      `json:"puuid,omitempty"`
	Kills    int         `json:"k"`
	Deaths   int         `json:"d"`
	Assists  int         `json:"a"`
	CS       int         `json:"cs"`
	Gold     int         `json:"gold"`
	Win      bool        `json:"win"`
}

// NormalizedMatch is the NDJSON line format the index is built from.
type NormalizedMatch struct {
	MatchID     string             `json:"match_id"`
	QueueID     int                `json:"queue_id"`
	DurationS   int                `json:"duration_s"`
	StartMs     int64              `json:"start_ms"`
	GameVersion string             `json:"game_version,omitempty"`
	Teams       []NormalizedPlayer `json:"teams"`
}

// Normalize flattens a match into its NDJSON form.
func Normalize(m *riot.MatchResponse) NormalizedMatch {
	nm := NormalizedMatch{
		MatchID:     m.Metadata.MatchID,
		QueueID:     m.Info.QueueID,
		DurationS:   m.Info.GameDuration,
		StartMs:     m.Info.GameCreation,
		GameVersion: m.Info.GameVersion,
		Teams:       make([]NormalizedPlayer, 0, len(m.Info.Participants)),
	}
	for _, p := range m.Info.Participants {
		side := lineup.Blue
		if p.TeamID == 200 {
			side = lineup.Red
		}
		nm.Teams = append(nm.Teams, NormalizedPlayer{
			Side:     side,
			Role:     lineup.CanonRole(p.Position()),
			Champion: p.ChampionName,
			PUUID:    p.PUUID,
			Kills:    p.Kills,
			Deaths:   p.Deaths,
			Assists:  p.Assists,
			CS:       p.CS(),
			Gold:     p.GoldEarned,
			Win:      p.Win,
		})
	}
	return nm
}

// Roster returns the match's composition.
func (nm NormalizedMatch) Roster() lineup.Roster {
	r := make(lineup.Roster, 0, len(nm.Teams))
	for _, p := range nm.Teams {
		r = append(r, lineup.Slot{Side: lineup.CanonSide(string(p.Side)), Role: p.Role, Champion: p.Champion})
	}
	return r
}

func (nm NormalizedMatch) side(s lineup.Side) SideStats {
	var st SideStats
	for _, p := range nm.Teams {
		if lineup.CanonSide(string(p.Side)) != s {
			continue
		}
		st.Kills += p.Kills
		st.Deaths += p.Deaths
		st.Assists += p.Assists
		st.CS += p.CS
		st.Gold += p.Gold
		st.Win = st.Win || p.Win
	}
	return st
}

// Record builds the index row for nm.
func (nm NormalizedMatch) Record() Record {
	return Record{
		LineupKey: lineup.Fingerprint(nm.Roster()),
		MatchID:   nm.MatchID,
		QueueID:   nm.QueueID,
		DurationS: nm.DurationS,
		StartMs:   nm.StartMs,
		Summary: Summary{
			MatchID:   nm.MatchID,
			QueueID:   nm.QueueID,
			DurationS: nm.DurationS,
			Blue:      nm.side(lineup.Blue),
			Red:       nm.side(lineup.Red),
		},
	}
}
