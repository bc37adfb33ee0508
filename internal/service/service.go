// Package service implements the recap, highlight, benchmark and lineup
// actions behind the HTTP boundary.
package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"rift-rewind/internal/benchmark"
	"rift-rewind/internal/db"
	"rift-rewind/internal/lineup"
	"rift-rewind/internal/riot"
	"rift-rewind/internal/summarize"
	"rift-rewind/internal/timeline"
)

const (
	DefaultMatchCount = 10
	MaxMatchCount     = 50
	MaxSampleCap      = benchmark.MaxSampleCap
)

// RiotAPI is the match-data provider surface the actions use. *riot.Client
// satisfies it.
type RiotAPI interface {
	benchmark.PeerSource
	GetAccountByRiotID(ctx context.Context, gameName, tagLine string) (*riot.AccountResponse, error)
	GetTimeline(ctx context.Context, matchID string) (*riot.TimelineResponse, error)
	GetLeagueEntriesByPUUID(ctx context.Context, puuid string) ([]riot.LeagueEntryResponse, error)
}

// Params are the inputs of one action. Query string and JSON body fields
// are merged into it by the transport.
type Params struct {
	Action           string        `json:"action"`
	GameName         string        `json:"gameName"`
	TagLine          string        `json:"tagLine"`
	PUUID            string        `json:"puuid"`
	MatchCount       int           `json:"matchCount"`
	MatchID          string        `json:"matchId"`
	SelectedMatchIDs []string      `json:"selectedMatchIds"`
	TierBump         int           `json:"tierBump"`
	SampleCap        int           `json:"samplePerSignature"`
	Lane             string        `json:"lane"`
	Lineup           lineup.Roster `json:"lineup"`
	QueueID          int           `json:"queue_id"`
	DurationS        int           `json:"duration_s"`
}

// Options tune the service.
type Options struct {
	Region       string
	Platform     string
	// TierBump is how many tiers above the player's peers come from. Nil
	// means 1; zero benchmarks against the player's own tier.
	TierBump     *int
	SampleCap    int
	BenchTimeout time.Duration
	FeatRules    timeline.FeatRules
}

// Service runs actions. Index and Summarizer are optional.
type Service struct {
	riot       RiotAPI
	bench      *benchmark.Benchmarker
	index      db.Index
	summarizer summarize.Summarizer
	opts       Options
	tierBump   int
	logger     *slog.Logger
}

// New wires a service. A nil index disables compareLineup; a nil summarizer
// leaves every summary empty.
func New(api RiotAPI, index db.Index, summarizer summarize.Summarizer, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	tierBump := 1
	if opts.TierBump != nil {
		tierBump = max(0, *opts.TierBump)
	}
	opts.SampleCap = ClampSampleCap(opts.SampleCap)
	if opts.BenchTimeout <= 0 {
		opts.BenchTimeout = 25 * time.Second
	}
	if opts.Region == "" {
		opts.Region = "americas"
	}
	if opts.Platform == "" {
		opts.Platform = riot.PlatformForRegion(opts.Region)
	}
	return &Service{
		riot:       api,
		bench:      &benchmark.Benchmarker{Sampler: &benchmark.Sampler{Source: api, Logger: logger}},
		index:      index,
		summarizer: summarizer,
		opts:       opts,
		tierBump:   tierBump,
		logger:     logger,
	}
}

// SetSampler replaces the peer sampler, e.g. to tune its worker count.
func (s *Service) SetSampler(sampler *benchmark.Sampler) {
	if sampler.Logger == nil {
		sampler.Logger = s.logger
	}
	s.bench = &benchmark.Benchmarker{Sampler: sampler}
}

// Do dispatches p.Action. The returned value is JSON encodable.
func (s *Service) Do(ctx context.Context, p Params) (any, error) {
	switch strings.TrimSpace(p.Action) {
	case "":
		return nil, ErrMissingAction
	case "health":
		return s.Health(), nil
	case "getRecap":
		return s.Recap(ctx, p)
	case "summarize":
		return s.Summarize(ctx, p)
	case "highlights":
		return s.MatchHighlights(ctx, p)
	case "compare":
		return s.Compare(ctx, p)
	case "compareLineup":
		return s.CompareLineup(ctx, p)
	}
	return nil, ErrUnknownAction
}

// ClampMatchCount bounds n to 1..50, with 0 meaning the default of 10.
func ClampMatchCount(n int) int {
	if n == 0 {
		return DefaultMatchCount
	}
	return max(1, min(MaxMatchCount, n))
}

// ClampSampleCap bounds a peer sample cap to 1..MaxSampleCap, with 0 meaning
// the default of 40.
func ClampSampleCap(n int) int {
	if n == 0 {
		return benchmark.DefaultSampleCap
	}
	return max(1, min(MaxSampleCap, n))
}

func validRiotID(p Params) bool {
	return p.GameName != "" && p.TagLine != "" &&
		p.GameName != "undefined" && p.TagLine != "undefined"
}

func (s *Service) resolvePUUID(ctx context.Context, p Params, missing *Error) (string, error) {
	if p.PUUID != "" {
		return p.PUUID, nil
	}
	if !validRiotID(p) {
		return "", missing
	}
	acct, err := s.riot.GetAccountByRiotID(ctx, p.GameName, p.TagLine)
	if err != nil {
		return "", err
	}
	return acct.PUUID, nil
}

func (s *Service) recentMatches(ctx context.Context, puuid string, count int) ([]*riot.MatchResponse, error) {
	ids, err := s.riot.GetMatchIDs(ctx, puuid, riot.MatchQuery{Count: ClampMatchCount(count)})
	if err != nil {
		return nil, err
	}
	matches := make([]*riot.MatchResponse, 0, len(ids))
	for _, id := range ids {
		m, err := s.riot.GetMatch(ctx, id)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// text runs the optional summarizer. Failures are logged and yield "".
func (s *Service) text(ctx context.Context, req summarize.Request, err error) string {
	if s.summarizer == nil {
		return ""
	}
	if err != nil {
		s.logger.Warn("building summary prompt failed", "err", err)
		return ""
	}
	out, err := s.summarizer.Summarize(ctx, req)
	if err != nil {
		s.logger.Warn("summary generation failed", "err", err)
		return ""
	}
	return out
}

// HealthResult reports the configured routing.
type HealthResult struct {
	OK       bool   `json:"ok"`
	Routing  string `json:"routing"`
	Platform string `json:"platform"`
}

func (s *Service) Health() HealthResult {
	return HealthResult{OK: true, Routing: s.opts.Region, Platform: s.opts.Platform}
}

// RecapResult is the getRecap response.
type RecapResult struct {
	PlayerOverview Overview     `json:"player_overview"`
	HiddenGem      string       `json:"hidden_gem"`
	RecentGames    []RecentGame `json:"recent_games"`
}

// Recap builds a player overview over their last matchCount games.
func (s *Service) Recap(ctx context.Context, p Params) (*RecapResult, error) {
	ov, games, err := s.bundle(ctx, p)
	if err != nil {
		return nil, err
	}
	gem := "Strong champion"
	if ov.FavoriteChampion != "" {
		gem = "Strong " + ov.FavoriteChampion
	}
	return &RecapResult{PlayerOverview: ov, HiddenGem: gem, RecentGames: games}, nil
}

func (s *Service) bundle(ctx context.Context, p Params) (Overview, []RecentGame, error) {
	if !validRiotID(p) {
		return Overview{}, nil, ErrMissingRiotID
	}
	puuid, err := s.resolvePUUID(ctx, Params{GameName: p.GameName, TagLine: p.TagLine}, ErrMissingRiotID)
	if err != nil {
		return Overview{}, nil, err
	}
	matches, err := s.recentMatches(ctx, puuid, p.MatchCount)
	if err != nil {
		return Overview{}, nil, err
	}
	ov, games := BuildOverview(matches, puuid)
	return ov, games, nil
}

// SummaryResult is the summarize response.
type SummaryResult struct {
	Summary  string   `json:"summary"`
	Overview Overview `json:"overview"`
}

// Summarize coaches a player on their recent overview.
func (s *Service) Summarize(ctx context.Context, p Params) (*SummaryResult, error) {
	ov, _, err := s.bundle(ctx, p)
	if err != nil {
		return nil, err
	}
	req, err := summarize.CoachingRequest(ov, p.Lane, nil)
	return &SummaryResult{Summary: s.text(ctx, req, err), Overview: ov}, nil
}
