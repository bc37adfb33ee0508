package benchmark

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"rift-rewind/internal/lineup"
	"rift-rewind/internal/riot"

	"github.com/bits-and-blooms/bloom/v3"
)

const (
	DefaultWorkers          = 8
	DefaultSampleCap        = 40
	MaxSampleCap            = 200
	DefaultPagesPerDivision = 2
	DefaultMaxPage          = 5
	DefaultPeersPerPage     = 10
	DefaultMatchesPerPeer   = 10

	candidateBuffer = 32
)

// PeerSource is the slice of the match-data provider the sampler needs.
// *riot.Client satisfies it.
type PeerSource interface {
	GetLeagueEntries(ctx context.Context, queue, tier, division string, page int) ([]riot.LeagueEntryResponse, error)
	GetSummonerByID(ctx context.Context, summonerID string) (*riot.SummonerResponse, error)
	GetMatchIDs(ctx context.Context, puuid string, q riot.MatchQuery) ([]string, error)
	GetMatch(ctx context.Context, matchID string) (*riot.MatchResponse, error)
}

// Sampler collects peer matches that share a lineup fingerprint. Every Sample
// call is an independent pass; nothing is cached between calls.
type Sampler struct {
	Source PeerSource
	Logger *slog.Logger

	Workers          int
	PagesPerDivision int
	MaxPage          int
	PeersPerPage     int
	MatchesPerPeer   int

	// Rand drives page selection and candidate shuffling. Nil seeds from the
	// clock on every call; a non-nil Rand must not be shared by concurrent
	// Sample calls.
	Rand *rand.Rand
}

type candidate struct {
	PUUID      string
	SummonerID string
}

func (s *Sampler) defaults() Sampler {
	c := *s
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.PagesPerDivision <= 0 {
		c.PagesPerDivision = DefaultPagesPerDivision
	}
	if c.MaxPage <= 0 {
		c.MaxPage = DefaultMaxPage
	}
	if c.PeersPerPage <= 0 {
		c.PeersPerPage = DefaultPeersPerPage
	}
	if c.MatchesPerPeer <= 0 {
		c.MatchesPerPeer = DefaultMatchesPerPeer
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c
}

// Sample returns up to sampleCap (at most MaxSampleCap) matches from the
// tier's ladder whose fingerprint equals key. It stops early when ctx is done or the cap is
// reached and never fails: candidates whose lookups error are skipped.
func (s *Sampler) Sample(ctx context.Context, key, tier string, sampleCap int) []*riot.MatchResponse {
	cfg := s.defaults()
	if sampleCap <= 0 {
		sampleCap = DefaultSampleCap
	}
	sampleCap = min(sampleCap, MaxSampleCap)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	candidates := make(chan candidate, candidateBuffer)
	results := make(chan *riot.MatchResponse, cfg.Workers)

	var (
		seenMu sync.Mutex
		seen   = bloom.NewWithEstimates(uint(cfg.Workers*cfg.PeersPerPage*cfg.MatchesPerPeer*8), 0.001)
	)
	firstVisit := func(matchID string) bool {
		seenMu.Lock()
		defer seenMu.Unlock()
		if seen.TestString(matchID) {
			return false
		}
		seen.AddString(matchID)
		return true
	}

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range candidates {
				cfg.scan(ctx, c, key, firstVisit, results)
			}
		}()
	}

	go func() {
		cfg.produce(ctx, tier, candidates)
		close(candidates)
		wg.Wait()
		close(results)
	}()

	var out []*riot.MatchResponse
	for m := range results {
		if len(out) < sampleCap {
			out = append(out, m)
		}
		if len(out) >= sampleCap {
			cancel()
		}
	}
	cfg.Logger.Debug("peer sampling finished", "tier", tier, "matches", len(out), "cap", sampleCap)
	return out
}

// produce walks random ladder pages for every division of tier and feeds the
// first PeersPerPage shuffled entries of each page to the workers.
func (s Sampler) produce(ctx context.Context, tier string, out chan<- candidate) {
	for _, div := range riot.Divisions(tier) {
		for i := 0; i < s.PagesPerDivision; i++ {
			if ctx.Err() != nil {
				return
			}
			page := 1 + s.Rand.Intn(s.MaxPage)
			entries, err := s.Source.GetLeagueEntries(ctx, riot.QueueSoloDuo, tier, div, page)
			if err != nil {
				s.Logger.Warn("league page failed", "tier", tier, "division", div, "page", page, "err", err)
				continue
			}
			s.Rand.Shuffle(len(entries), func(a, b int) { entries[a], entries[b] = entries[b], entries[a] })
			if len(entries) > s.PeersPerPage {
				entries = entries[:s.PeersPerPage]
			}
			for _, e := range entries {
				select {
				case out <- candidate{PUUID: e.PUUID, SummonerID: e.SummonerID}:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// scan fetches a candidate's recent matches and forwards those with the
// wanted fingerprint.
func (s Sampler) scan(ctx context.Context, c candidate, key string, firstVisit func(string) bool, out chan<- *riot.MatchResponse) {
	puuid := c.PUUID
	if puuid == "" && c.SummonerID != "" {
		summ, err := s.Source.GetSummonerByID(ctx, c.SummonerID)
		if err != nil {
			s.Logger.Debug("skipping candidate", "summoner", c.SummonerID, "err", err)
			return
		}
		puuid = summ.PUUID
	}
	if puuid == "" {
		return
	}

	ids, err := s.Source.GetMatchIDs(ctx, puuid, riot.MatchQuery{Count: s.MatchesPerPeer})
	if err != nil {
		s.Logger.Debug("skipping candidate", "puuid", puuid, "err", err)
		return
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		if !firstVisit(id) {
			continue
		}
		m, err := s.Source.GetMatch(ctx, id)
		if err != nil {
			s.Logger.Debug("skipping match", "match", id, "err", err)
			continue
		}
		if lineup.Fingerprint(lineup.RosterFromMatch(m)) != key {
			continue
		}
		select {
		case out <- m:
		case <-ctx.Done():
			return
		}
	}
}
