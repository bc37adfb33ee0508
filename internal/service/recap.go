package service

import (
	"math"
	"strconv"

	"rift-rewind/internal/benchmark"
	"rift-rewind/internal/riot"
)

// Overview aggregates a player's recent matches.
type Overview struct {
	GamesAnalyzed    int     `json:"games_analyzed"`
	Wins             int     `json:"wins"`
	Winrate          float64 `json:"winrate"`
	AvgKills         float64 `json:"avg_kills"`
	AvgDeaths        float64 `json:"avg_deaths"`
	AvgAssists       float64 `json:"avg_assists"`
	KDA              float64 `json:"kda"`
	CSPerMin         float64 `json:"cs_per_min"`
	FavoriteChampion string  `json:"favorite_champion,omitempty"`
}

// RecentGame is one row of the recap's game list.
type RecentGame struct {
	MatchID      string  `json:"match_id"`
	Timestamp    int64   `json:"timestamp"`
	QueueID      int     `json:"queue_id"`
	GameMode     string  `json:"game_mode"`
	GameDuration int     `json:"game_duration"`
	Champion     string  `json:"champion"`
	Role         string  `json:"role"`
	Kills        int     `json:"kills"`
	Deaths       int     `json:"deaths"`
	Assists      int     `json:"assists"`
	KDA          float64 `json:"kda"`
	CS           int     `json:"cs"`
	CSPerMin     float64 `json:"cs_per_min"`
	Gold         int     `json:"gold"`
	Win          bool    `json:"win"`
}

// BuildOverview summarizes puuid's performance over matches. Matches the
// player is missing from still count as analyzed games.
func BuildOverview(matches []*riot.MatchResponse, puuid string) (Overview, []RecentGame) {
	ov := Overview{GamesAnalyzed: len(matches)}
	if len(matches) == 0 {
		return ov, []RecentGame{}
	}

	var (
		kills, deaths, assists, cs int
		minutes                    float64
		champs                     = map[string]int{}
		order                      []string
		games                      = make([]RecentGame, 0, len(matches))
	)
	for _, m := range matches {
		dur := m.Info.GameDuration
		if dur > 0 {
			minutes += float64(dur) / 60
		}
		p, ok := m.FindParticipant(puuid)
		if !ok {
			continue
		}

		if p.Win {
			ov.Wins++
		}
		kills += p.Kills
		deaths += p.Deaths
		assists += p.Assists
		cs += p.CS()

		champ := p.ChampionName
		if champ == "" {
			champ = "Unknown"
		}
		if champs[champ] == 0 {
			order = append(order, champ)
		}
		champs[champ]++

		var csPerMin float64
		if dur > 0 {
			csPerMin = float64(p.CS()) / (float64(dur) / 60)
		}
		games = append(games, RecentGame{
			MatchID:      m.Metadata.MatchID,
			Timestamp:    m.Info.GameCreation,
			QueueID:      m.Info.QueueID,
			GameMode:     gameMode(m.Info),
			GameDuration: dur,
			Champion:     champ,
			Role:         p.Position(),
			Kills:        p.Kills,
			Deaths:       p.Deaths,
			Assists:      p.Assists,
			KDA:          round(benchmark.KDA(p.Kills, p.Deaths, p.Assists), 2),
			CS:           p.CS(),
			CSPerMin:     round(csPerMin, 2),
			Gold:         p.GoldEarned,
			Win:          p.Win,
		})
	}

	// Ties go to the champion played first.
	ov.FavoriteChampion = "Unknown"
	best := 0
	for _, c := range order {
		if champs[c] > best {
			best, ov.FavoriteChampion = champs[c], c
		}
	}

	n := float64(ov.GamesAnalyzed)
	ov.Winrate = round(float64(ov.Wins)/n*100, 1)
	ov.AvgKills = round(float64(kills)/n, 1)
	ov.AvgDeaths = round(float64(deaths)/n, 1)
	ov.AvgAssists = round(float64(assists)/n, 1)
	ov.KDA = round(benchmark.KDA(kills, deaths, assists), 2)
	if minutes > 0 {
		ov.CSPerMin = round(float64(cs)/minutes, 2)
	}
	return ov, games
}

// MainRole is the position the player held most often, or "".
func MainRole(games []RecentGame) string {
	counts := map[string]int{}
	var role string
	for _, g := range games {
		if g.Role == "" {
			continue
		}
		counts[g.Role]++
		if counts[g.Role] > counts[role] {
			role = g.Role
		}
	}
	return role
}

func gameMode(info riot.MatchInfo) string {
	switch {
	case info.GameMode != "":
		return info.GameMode
	case info.GameType != "":
		return info.GameType
	}
	return strconv.Itoa(info.QueueID)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
