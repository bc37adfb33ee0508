package benchmark

import (
	"rift-rewind/internal/lineup"
	"rift-rewind/internal/riot"
)

// Snapshot is the scalar summary of one player's match.
type Snapshot struct {
	Kills    int     `json:"k"`
	Deaths   int     `json:"d"`
	Assists  int     `json:"a"`
	KDA      float64 `json:"kda"`
	CS       int     `json:"cs"`
	CSPerMin float64 `json:"cs_per_min"`
	Gold     int     `json:"gold"`
	Win      bool    `json:"win"`
	Role     string  `json:"role"`
	Champion string  `json:"champion"`
}

// KDA is (kills+assists)/deaths, or kills+assists when deathless.
func KDA(kills, deaths, assists int) float64 {
	if deaths > 0 {
		return float64(kills+assists) / float64(deaths)
	}
	return float64(kills + assists)
}

// SnapshotOf summarizes p for a game of durationS seconds.
func SnapshotOf(p riot.MatchParticipant, durationS int) Snapshot {
	minutes := float64(max(1, durationS)) / 60
	return Snapshot{
		Kills:    p.Kills,
		Deaths:   p.Deaths,
		Assists:  p.Assists,
		KDA:      KDA(p.Kills, p.Deaths, p.Assists),
		CS:       p.CS(),
		CSPerMin: float64(p.CS()) / minutes,
		Gold:     p.GoldEarned,
		Win:      p.Win,
		Role:     p.Position(),
		Champion: p.ChampionName,
	}
}

// SnapshotFor summarizes puuid's performance in m.
func SnapshotFor(m *riot.MatchResponse, puuid string) (Snapshot, bool) {
	p, ok := m.FindParticipant(puuid)
	if !ok {
		return Snapshot{}, false
	}
	return SnapshotOf(p, m.Info.GameDuration), true
}

// Counterparts returns snapshots of the players in m holding role and
// champion on side. With an empty role and champion every participant is
// returned.
func Counterparts(m *riot.MatchResponse, side lineup.Side, role, champion string) []Snapshot {
	var out []Snapshot
	all := role == "" && champion == ""
	wantRole, wantChamp := lineup.CanonRole(role), lineup.CanonChampion(champion)
	for _, p := range m.Info.Participants {
		if !all {
			if SideOf(p.TeamID) != side ||
				lineup.CanonRole(p.Position()) != wantRole ||
				lineup.CanonChampion(p.ChampionName) != wantChamp {
				continue
			}
		}
		out = append(out, SnapshotOf(p, m.Info.GameDuration))
	}
	return out
}

// SideOf maps a team id onto its lineup side.
func SideOf(teamID int) lineup.Side {
	if teamID == 200 {
		return lineup.Red
	}
	return lineup.Blue
}
