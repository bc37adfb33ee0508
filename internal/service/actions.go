package service

import (
	"context"
	"errors"

	"rift-rewind/internal/benchmark"
	"rift-rewind/internal/db"
	"rift-rewind/internal/lineup"
	"rift-rewind/internal/riot"
	"rift-rewind/internal/summarize"
	"rift-rewind/internal/timeline"
)

// HighlightsResult is one match seen from the player's side.
type HighlightsResult struct {
	Timeline       *timeline.ParticipantTimeline `json:"timeline"`
	WardsPlaced    map[string]int                `json:"ward_placed_distribution"`
	WardsDestroyed map[string]int                `json:"ward_destroyed_distribution"`
	FeatScore      int                           `json:"feat_score"`
	FeatAdvantage  bool                          `json:"feat_advantage"`
	Highlights     []timeline.Highlight          `json:"highlights"`
	Summary        string                        `json:"summary"`
}

// MatchHighlights aggregates the timeline of p.MatchID (or the player's most
// recent match) and derives its analytics.
func (s *Service) MatchHighlights(ctx context.Context, p Params) (*HighlightsResult, error) {
	puuid, err := s.resolvePUUID(ctx, p, ErrMissingRiotID)
	if err != nil {
		return nil, err
	}
	matchID := p.MatchID
	if matchID == "" {
		ids, err := s.riot.GetMatchIDs(ctx, puuid, riot.MatchQuery{Count: 1})
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, ErrNoMatches
		}
		matchID = ids[0]
	}

	match, err := s.riot.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	tl, err := s.riot.GetTimeline(ctx, matchID)
	if err != nil {
		return nil, err
	}

	pt, ok := timeline.Aggregator{Logger: s.logger}.Match(match, tl, puuid)
	if !ok {
		return nil, ErrNotInMatch
	}

	res := &HighlightsResult{
		Timeline:       pt,
		WardsPlaced:    timeline.WardDistribution(pt.WardsPlaced),
		WardsDestroyed: timeline.WardDistribution(pt.WardsDestroyed),
		FeatScore:      timeline.FeatScore(pt.Feats, pt.TeamID, s.opts.FeatRules),
		FeatAdvantage:  timeline.FeatAdvantage(pt.Feats, pt.TeamID, s.opts.FeatRules),
		Highlights:     timeline.Highlights(pt),
	}
	req, err := summarize.HighlightRequest(pt.Champion, res.Highlights)
	res.Summary = s.text(ctx, req, err)
	return res, nil
}

// Signature is the benchmark of one selected match.
type Signature struct {
	MatchID      string             `json:"matchId"`
	SignatureKey string             `json:"signatureKey"`
	UserSnapshot benchmark.Snapshot `json:"user_snapshot"`
	benchmark.Result
}

// CompareResult is the compare response.
type CompareResult struct {
	Signatures     []Signature `json:"signatures"`
	UserTier       string      `json:"user_tier"`
	TargetTier     string      `json:"target_tier"`
	Coaching       string      `json:"coaching"`
	RoutingRegion  string      `json:"routingRegion"`
	PlatformRegion string      `json:"platformRegion"`
}

type deltaBlock struct {
	MatchID     string                `json:"matchId"`
	Deltas      benchmark.DeltaVector `json:"deltas"`
	PeerMedians benchmark.Medians     `json:"peer_medians"`
}

// Compare benchmarks each selected match against higher-tier peers who
// played the same lineup. The player's most recent match is used when none
// are selected.
func (s *Service) Compare(ctx context.Context, p Params) (*CompareResult, error) {
	puuid, err := s.resolvePUUID(ctx, p, ErrMissingRiotIDOrUUID)
	if err != nil {
		return nil, err
	}

	entries, err := s.riot.GetLeagueEntriesByPUUID(ctx, puuid)
	if err != nil {
		return nil, err
	}
	userTier, _ := riot.PickSoloTier(entries)
	bump := p.TierBump
	if bump <= 0 {
		bump = s.tierBump
	}
	sampleCap := s.opts.SampleCap
	if p.SampleCap > 0 {
		sampleCap = ClampSampleCap(p.SampleCap)
	}

	ids := p.SelectedMatchIDs
	if len(ids) == 0 {
		ids, err = s.riot.GetMatchIDs(ctx, puuid, riot.MatchQuery{Count: 1})
		if err != nil {
			return nil, err
		}
	}

	res := &CompareResult{
		Signatures:     make([]Signature, 0, len(ids)),
		UserTier:       userTier,
		TargetTier:     riot.BumpTier(userTier, bump),
		RoutingRegion:  s.opts.Region,
		PlatformRegion: s.opts.Platform,
	}
	var blocks []deltaBlock
	for _, id := range ids {
		m, err := s.riot.GetMatch(ctx, id)
		if err != nil {
			return nil, err
		}
		me, ok := m.FindParticipant(puuid)
		if !ok {
			s.logger.Warn("player missing from selected match", "match", id)
			continue
		}
		subject := benchmark.SnapshotOf(me, m.Info.GameDuration)
		key := lineup.Fingerprint(lineup.RosterFromMatch(m))

		benchCtx, cancel := context.WithTimeout(ctx, s.opts.BenchTimeout)
		result := s.bench.Benchmark(benchCtx, benchmark.Request{
			Subject:   subject,
			Key:       key,
			Tier:      userTier,
			TierBump:  bump,
			SampleCap: sampleCap,
			Side:      benchmark.SideOf(me.TeamID),
			Role:      me.Position(),
			Champion:  me.ChampionName,
		})
		cancel()

		res.Signatures = append(res.Signatures, Signature{
			MatchID:      id,
			SignatureKey: key,
			UserSnapshot: subject,
			Result:       result,
		})
		blocks = append(blocks, deltaBlock{MatchID: id, Deltas: result.Deltas, PeerMedians: result.Medians})
	}

	stub := map[string]any{
		"selected_matches": len(res.Signatures),
		"user_tier":        res.UserTier,
		"target_tier":      res.TargetTier,
	}
	req, err := summarize.CoachingRequest(stub, p.Lane, blocks)
	res.Coaching = s.text(ctx, req, err)
	return res, nil
}

// LineupMeta echoes the posted match context next to the indexed match.
type LineupMeta struct {
	QueueID   int    `json:"queue_id,omitempty"`
	DurationS int    `json:"duration_s,omitempty"`
	MatchID   string `json:"match_id"`
}

// LineupResult is the compareLineup response.
type LineupResult struct {
	Found      bool        `json:"found"`
	LineupKey  string      `json:"lineup_key"`
	MatchID    string      `json:"match_id,omitempty"`
	Distance   float64     `json:"distance"`
	Historical *db.Summary `json:"historical,omitempty"`
	Summary    string      `json:"summary,omitempty"`
	Meta       *LineupMeta `json:"meta,omitempty"`
}

// CompareLineup fingerprints the posted lineup and looks up the most recent
// historical match with exactly that composition.
func (s *Service) CompareLineup(ctx context.Context, p Params) (*LineupResult, error) {
	if len(p.Lineup) == 0 {
		return nil, ErrMissingLineup
	}
	if s.index == nil {
		return nil, ErrIndexUnavailable
	}

	key := lineup.Fingerprint(p.Lineup)
	rec, err := s.index.Get(ctx, key)
	if errors.Is(err, db.ErrNotFound) {
		return &LineupResult{Found: false, LineupKey: key}, nil
	}
	if err != nil {
		return nil, err
	}

	res := &LineupResult{
		Found:      true,
		LineupKey:  key,
		MatchID:    rec.MatchID,
		Historical: &rec.Summary,
		Meta:       &LineupMeta{QueueID: p.QueueID, DurationS: p.DurationS, MatchID: rec.MatchID},
	}
	current := map[string]any{"lineup": p.Lineup, "queue_id": p.QueueID, "duration_s": p.DurationS}
	req, err := summarize.LineupRequest(key, current, rec.Summary)
	res.Summary = s.text(ctx, req, err)
	return res, nil
}
