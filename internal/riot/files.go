package riot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

// FileSource serves saved API payloads from a directory, for offline runs.
//
//	<dir>/<matchId>.json           match-v5 match
//	<dir>/<matchId>.timeline.json  match-v5 timeline
//	<dir>/league_<puuid>.json      league-v4 entries (optional)
//
// Ladder pages and summoner lookups are not stored, so peer sampling over a
// FileSource finds nothing.
type FileSource struct {
	Dir string
}

const timelineSuffix = ".timeline.json"

func (f FileSource) read(name string, v any) error {
	b, err := os.ReadFile(filepath.Join(f.Dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%s: %w: %v", name, ErrMalformedPayload, err)
	}
	return nil
}

func (f FileSource) GetMatch(_ context.Context, matchID string) (*MatchResponse, error) {
	var m MatchResponse
	if err := f.read(matchID+".json", &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (f FileSource) GetTimeline(_ context.Context, matchID string) (*TimelineResponse, error) {
	var tl TimelineResponse
	if err := f.read(matchID+timelineSuffix, &tl); err != nil {
		return nil, err
	}
	return &tl, nil
}

// matches loads every stored match, newest first.
func (f FileSource) matches() ([]*MatchResponse, error) {
	entries, err := os.ReadDir(f.Dir)
	if err != nil {
		return nil, err
	}
	var out []*MatchResponse
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") ||
			strings.HasSuffix(name, timelineSuffix) || strings.HasPrefix(name, "league_") {
			continue
		}
		var m MatchResponse
		if err := f.read(name, &m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Info.GameCreation > out[j].Info.GameCreation
	})
	return out, nil
}

// GetMatchIDs lists the stored matches puuid played, newest first. Only
// Count and Queue of q are honoured.
func (f FileSource) GetMatchIDs(_ context.Context, puuid string, q MatchQuery) ([]string, error) {
	all, err := f.matches()
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, m := range all {
		if q.Queue != 0 && m.Info.QueueID != q.Queue {
			continue
		}
		if _, ok := m.FindParticipant(puuid); !ok {
			continue
		}
		ids = append(ids, m.Metadata.MatchID)
		if q.Count > 0 && len(ids) == q.Count {
			break
		}
	}
	return ids, nil
}

// GetAccountByRiotID resolves a Riot ID from the rosters of stored matches.
func (f FileSource) GetAccountByRiotID(_ context.Context, gameName, tagLine string) (*AccountResponse, error) {
	all, err := f.matches()
	if err != nil {
		return nil, err
	}
	for _, m := range all {
		for _, p := range m.Info.Participants {
			if strings.EqualFold(p.RiotIdGameName, gameName) && strings.EqualFold(p.RiotIdTagline, tagLine) {
				return &AccountResponse{PUUID: p.PUUID, GameName: p.RiotIdGameName, TagLine: p.RiotIdTagline}, nil
			}
		}
	}
	return nil, fmt.Errorf("riot id %s#%s: %w", gameName, tagLine, ErrNotFound)
}

// GetLeagueEntriesByPUUID returns the saved entries, or none when the file is
// missing.
func (f FileSource) GetLeagueEntriesByPUUID(_ context.Context, puuid string) ([]LeagueEntryResponse, error) {
	var entries []LeagueEntryResponse
	err := f.read("league_"+puuid+".json", &entries)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return entries, err
}

func (f FileSource) GetLeagueEntries(context.Context, string, string, string, int) ([]LeagueEntryResponse, error) {
	return nil, nil
}

func (f FileSource) GetSummonerByID(_ context.Context, summonerID string) (*SummonerResponse, error) {
	return nil, fmt.Errorf("summoner %s: %w", summonerID, ErrNotFound)
}
