package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"rift-rewind/internal/db"
	"rift-rewind/internal/riot"

	"github.com/bits-and-blooms/bloom/v3"
)

const (
	// Worker pool configuration
	DefaultWorkerCount      = 10
	DefaultMatchesPerPlayer = 20
	MatchChannelBuffer      = 100

	defaultPollInterval = 100 * time.Millisecond
)

// Source is the slice of the Riot API the crawler needs.
type Source interface {
	GetSoloQueueRank(ctx context.Context, puuid string) (tier, division string, hasRank bool, err error)
	GetMatchHistory(ctx context.Context, puuid string, count int) ([]string, error)
	GetMatch(ctx context.Context, matchID string) (*riot.MatchResponse, error)
}

// MatchJob is a match to be fetched by workers.
type MatchJob struct {
	MatchID string
	PUUID   string // player whose history produced the id
}

type matchResult struct {
	job   MatchJob
	match *riot.MatchResponse
	err   error
}

// SpiderConfig holds configuration for the spider.
type SpiderConfig struct {
	MatchesPerPlayer int
	MaxPlayers       int // 0 means unlimited
	MaxMatches       int // 0 means unlimited
	WorkerCount      int
	// RankGate decides whether a player's games are worth crawling.
	// Defaults to Emerald IV and above.
	RankGate func(tier, division string) bool
	Logger   *slog.Logger
}

// Stats summarizes a crawl.
type Stats struct {
	PlayersProcessed int64
	PlayersSkipped   int64
	MatchesWritten   int64
	MatchesFailed    int64
	Elapsed          time.Duration
}

func (st Stats) String() string {
	s := fmt.Sprintf("players=%d skipped=%d matches=%d failed=%d time=%s",
		st.PlayersProcessed, st.PlayersSkipped, st.MatchesWritten, st.MatchesFailed, formatDuration(st.Elapsed))
	if st.MatchesWritten > 0 && st.Elapsed > 0 {
		s += fmt.Sprintf(" throughput=%.1f/min", float64(st.MatchesWritten)/st.Elapsed.Minutes())
	}
	return s
}

// Spider snowball-crawls ranked matches from seed players and hands each
// normalized match to its sinks. It is single use.
type Spider struct {
	source Source
	sinks  []Sink
	cfg    SpiderConfig
	logger *slog.Logger

	pollInterval time.Duration

	// Deduplication (bloom filters for memory efficiency)
	visitedMatches *bloom.BloomFilter
	visitedPUUIDs  *bloom.BloomFilter
	matchesMu      sync.Mutex
	puuidsMu       sync.Mutex

	playerQueue   []string
	playerQueueMu sync.Mutex

	inFlight         int64
	playersProcessed int64
	playersSkipped   int64
	matchesWritten   int64
	matchesFailed    int64

	fatalOnce sync.Once
	fatal     error
	cancel    context.CancelFunc
}

// NewSpider creates a spider that writes to sinks.
func NewSpider(source Source, cfg SpiderConfig, sinks ...Sink) *Spider {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.MatchesPerPlayer <= 0 {
		cfg.MatchesPerPlayer = DefaultMatchesPerPlayer
	}
	if cfg.RankGate == nil {
		cfg.RankGate = riot.IsEmerald4OrHigher
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Spider{
		source:         source,
		sinks:          sinks,
		cfg:            cfg,
		logger:         logger,
		pollInterval:   defaultPollInterval,
		visitedMatches: bloom.NewWithEstimates(500000, 0.001),
		visitedPUUIDs:  bloom.NewWithEstimates(1000000, 0.001),
		playerQueue:    make([]string, 0, 1000),
	}
}

// Run crawls from seeds until the player queue drains, a limit is hit or ctx
// is cancelled. Sinks are flushed before it returns. A rejected API key
// aborts the crawl and is returned.
func (s *Spider) Run(ctx context.Context, seeds ...string) (Stats, error) {
	start := time.Now()
	ctx, s.cancel = context.WithCancel(ctx)
	defer s.cancel()

	for _, puuid := range seeds {
		s.addPlayer(puuid)
	}

	jobs := make(chan MatchJob, MatchChannelBuffer)
	results := make(chan matchResult, MatchChannelBuffer)

	var workers sync.WaitGroup
	for i := 0; i < s.cfg.WorkerCount; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			s.worker(ctx, jobs, results)
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.processResults(ctx, results)
	}()

	if err := s.producerLoop(ctx, jobs); err != nil {
		s.abort(err)
	}

	close(jobs)
	workers.Wait()
	close(results)
	<-done

	// Flush even when ctx is already cancelled.
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	for _, sink := range s.sinks {
		if err := sink.Flush(flushCtx); err != nil {
			s.logger.Error("sink flush failed", "err", err)
			s.abort(err)
		}
	}

	stats := Stats{
		PlayersProcessed: atomic.LoadInt64(&s.playersProcessed),
		PlayersSkipped:   atomic.LoadInt64(&s.playersSkipped),
		MatchesWritten:   atomic.LoadInt64(&s.matchesWritten),
		MatchesFailed:    atomic.LoadInt64(&s.matchesFailed),
		Elapsed:          time.Since(start),
	}
	return stats, s.fatal
}

// Stop cancels a running crawl.
func (s *Spider) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Spider) abort(err error) {
	s.fatalOnce.Do(func() { s.fatal = err })
	s.cancel()
}

// producerLoop pops players, gates them on rank and dispatches their unseen
// matches.
func (s *Spider) producerLoop(ctx context.Context, jobs chan<- MatchJob) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		limitHit := s.cfg.MaxPlayers > 0 && atomic.LoadInt64(&s.playersProcessed) >= int64(s.cfg.MaxPlayers)
		var puuid string
		if !limitHit {
			puuid = s.popPlayer()
		}
		if puuid == "" {
			// New players only come from in-flight matches.
			if atomic.LoadInt64(&s.inFlight) == 0 && (limitHit || s.isQueueEmpty()) {
				return nil
			}
			if !sleepCtx(ctx, s.pollInterval) {
				return nil
			}
			continue
		}

		tier, division, hasRank, err := s.source.GetSoloQueueRank(ctx, puuid)
		if err != nil {
			if IsAPIKeyError(err) {
				return fmt.Errorf("rank check failed: %w", err)
			}
			s.logger.Warn("rank lookup failed, skipping player", "puuid", short(puuid), "err", err)
			atomic.AddInt64(&s.playersSkipped, 1)
			continue
		}
		if !hasRank || !s.cfg.RankGate(tier, division) {
			s.logger.Debug("player below rank gate", "puuid", short(puuid), "tier", tier, "division", division)
			atomic.AddInt64(&s.playersSkipped, 1)
			continue
		}

		matchIDs, err := s.source.GetMatchHistory(ctx, puuid, s.cfg.MatchesPerPlayer)
		if err != nil {
			if IsAPIKeyError(err) {
				return fmt.Errorf("match history failed: %w", err)
			}
			s.logger.Warn("match history failed", "puuid", short(puuid), "err", err)
			continue
		}
		atomic.AddInt64(&s.playersProcessed, 1)
		s.logger.Info("processing player", "puuid", short(puuid), "tier", tier, "division", division, "matches", len(matchIDs))

		for _, matchID := range matchIDs {
			if !s.markMatchVisited(matchID) {
				continue
			}
			atomic.AddInt64(&s.inFlight, 1)
			select {
			case jobs <- MatchJob{MatchID: matchID, PUUID: puuid}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// worker fetches match details.
func (s *Spider) worker(ctx context.Context, jobs <-chan MatchJob, results chan<- matchResult) {
	for job := range jobs {
		if ctx.Err() != nil {
			continue
		}
		match, err := s.source.GetMatch(ctx, job.MatchID)
		select {
		case results <- matchResult{job: job, match: match, err: err}:
		case <-ctx.Done():
		}
	}
}

// processResults normalizes matches, writes them to every sink and queues
// the players they contain.
func (s *Spider) processResults(ctx context.Context, results <-chan matchResult) {
	for res := range results {
		s.handleResult(ctx, res)
		atomic.AddInt64(&s.inFlight, -1)
	}
}

func (s *Spider) handleResult(ctx context.Context, res matchResult) {
	if res.err != nil {
		atomic.AddInt64(&s.matchesFailed, 1)
		if IsAPIKeyError(res.err) {
			s.abort(fmt.Errorf("match fetch failed: %w", res.err))
			return
		}
		s.logger.Warn("match fetch failed", "match", res.job.MatchID, "err", res.err)
		return
	}
	if res.match == nil || len(res.match.Info.Participants) != 10 {
		atomic.AddInt64(&s.matchesFailed, 1)
		return
	}
	if s.cfg.MaxMatches > 0 && atomic.LoadInt64(&s.matchesWritten) >= int64(s.cfg.MaxMatches) {
		return
	}

	nm := db.Normalize(res.match)
	for _, sink := range s.sinks {
		if err := sink.Write(ctx, nm); err != nil {
			s.logger.Error("sink write failed", "match", nm.MatchID, "err", err)
			s.abort(err)
			return
		}
	}
	written := atomic.AddInt64(&s.matchesWritten, 1)

	for _, p := range res.match.Info.Participants {
		s.addPlayer(p.PUUID)
	}

	if s.cfg.MaxMatches > 0 && written >= int64(s.cfg.MaxMatches) {
		s.logger.Info("match limit reached", "matches", written)
		s.cancel()
	}
}

// IsAPIKeyError reports whether err means the key was rejected.
func IsAPIKeyError(err error) bool {
	return errors.Is(err, riot.ErrForbidden)
}

// markMatchVisited records matchID and reports whether it was new.
func (s *Spider) markMatchVisited(matchID string) bool {
	s.matchesMu.Lock()
	defer s.matchesMu.Unlock()
	return !s.visitedMatches.TestOrAddString(matchID)
}

func (s *Spider) addPlayer(puuid string) {
	if puuid == "" {
		return
	}
	s.puuidsMu.Lock()
	seen := s.visitedPUUIDs.TestOrAddString(puuid)
	s.puuidsMu.Unlock()
	if seen {
		return
	}

	s.playerQueueMu.Lock()
	s.playerQueue = append(s.playerQueue, puuid)
	s.playerQueueMu.Unlock()
}

func (s *Spider) popPlayer() string {
	s.playerQueueMu.Lock()
	defer s.playerQueueMu.Unlock()

	if len(s.playerQueue) == 0 {
		return ""
	}
	puuid := s.playerQueue[0]
	s.playerQueue = s.playerQueue[1:]
	return puuid
}

func (s *Spider) isQueueEmpty() bool {
	s.playerQueueMu.Lock()
	defer s.playerQueueMu.Unlock()
	return len(s.playerQueue) == 0
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func short(puuid string) string {
	return puuid[:min(16, len(puuid))]
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%02ds", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%02dm%02ds", hours, mins, secs)
}
