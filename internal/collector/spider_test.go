package collector

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"rift-rewind/internal/db"
	"rift-rewind/internal/riot"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load("../../.env")
}

type fakeSource struct {
	ranks     map[string]string // puuid -> tier
	histories map[string][]string
	matches   map[string][]string // match id -> participant puuids
	forbidden bool

	mu      sync.Mutex
	fetched map[string]int
}

func (f *fakeSource) GetSoloQueueRank(_ context.Context, puuid string) (string, string, bool, error) {
	if f.forbidden {
		return "", "", false, &riot.APIError{StatusCode: 403, URL: "rank"}
	}
	tier, ok := f.ranks[puuid]
	return tier, "IV", ok, nil
}

func (f *fakeSource) GetMatchHistory(_ context.Context, puuid string, count int) ([]string, error) {
	ids := f.histories[puuid]
	if len(ids) > count {
		ids = ids[:count]
	}
	return ids, nil
}

func (f *fakeSource) GetMatch(_ context.Context, matchID string) (*riot.MatchResponse, error) {
	f.mu.Lock()
	if f.fetched == nil {
		f.fetched = map[string]int{}
	}
	f.fetched[matchID]++
	f.mu.Unlock()

	players, ok := f.matches[matchID]
	if !ok {
		return nil, &riot.APIError{StatusCode: 404, URL: matchID}
	}
	m := &riot.MatchResponse{Metadata: riot.MatchMetadata{MatchID: matchID}}
	m.Info.QueueID = 420
	for i := 0; i < 10; i++ {
		p := riot.MatchParticipant{
			ParticipantID: i + 1,
			TeamID:        100,
			TeamPosition:  "MIDDLE",
			ChampionName:  fmt.Sprintf("Champ%d", i),
		}
		if i >= 5 {
			p.TeamID = 200
		}
		if i < len(players) {
			p.PUUID = players[i]
		}
		m.Info.Participants = append(m.Info.Participants, p)
	}
	return m, nil
}

type memSink struct {
	mu      sync.Mutex
	ids     []string
	flushed bool
}

func (m *memSink) Write(_ context.Context, nm db.NormalizedMatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append(m.ids, nm.MatchID)
	return nil
}

func (m *memSink) Flush(context.Context) error {
	m.flushed = true
	return nil
}

func (m *memSink) sorted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string(nil), m.ids...)
	sort.Strings(out)
	return out
}

func crawlFixture() *fakeSource {
	return &fakeSource{
		ranks: map[string]string{"seed": "DIAMOND", "p2": "EMERALD", "low": "SILVER"},
		histories: map[string][]string{
			"seed": {"M1", "M2"},
			"p2":   {"M2", "M3", "MISSING"},
			"low":  {"M9"},
		},
		matches: map[string][]string{
			"M1": {"seed", "p2", "low"},
			"M2": {"seed", "p2"},
			"M3": {"p2", "unranked"},
			"M9": {"low"},
		},
	}
}

func newTestSpider(src Source, cfg SpiderConfig, sinks ...Sink) *Spider {
	s := NewSpider(src, cfg, sinks...)
	s.pollInterval = time.Millisecond
	return s
}

func TestSpider_CrawlsAndDedups(t *testing.T) {
	src := crawlFixture()
	sink := &memSink{}
	spider := newTestSpider(src, SpiderConfig{WorkerCount: 3}, sink)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stats, err := spider.Run(ctx, "seed")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := sink.sorted()
	want := []string{"M1", "M2", "M3"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Written matches = %v, want %v", got, want)
	}
	for id, n := range src.fetched {
		if n != 1 {
			t.Errorf("Match %s fetched %d times", id, n)
		}
	}
	if !sink.flushed {
		t.Error("Expected sink to be flushed")
	}
	if stats.PlayersProcessed != 2 {
		t.Errorf("PlayersProcessed = %d, want 2", stats.PlayersProcessed)
	}
	// "low" is below the gate, "unranked" has no entry
	if stats.PlayersSkipped != 2 {
		t.Errorf("PlayersSkipped = %d, want 2", stats.PlayersSkipped)
	}
	if stats.MatchesFailed != 1 {
		t.Errorf("MatchesFailed = %d, want 1", stats.MatchesFailed)
	}
}

func TestSpider_MaxMatches(t *testing.T) {
	sink := &memSink{}
	spider := newTestSpider(crawlFixture(), SpiderConfig{WorkerCount: 1, MaxMatches: 1}, sink)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stats, err := spider.Run(ctx, "seed")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.MatchesWritten != 1 || len(sink.sorted()) != 1 {
		t.Errorf("Expected exactly one match, got %d (%v)", stats.MatchesWritten, sink.sorted())
	}
}

func TestSpider_CustomRankGate(t *testing.T) {
	sink := &memSink{}
	gate := func(tier, _ string) bool { return true }
	spider := newTestSpider(crawlFixture(), SpiderConfig{RankGate: gate}, sink)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := spider.Run(ctx, "seed"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := sink.sorted(); len(got) != 4 {
		t.Errorf("Expected M9 to be crawled too, got %v", got)
	}
}

func TestSpider_ForbiddenAborts(t *testing.T) {
	src := crawlFixture()
	src.forbidden = true
	spider := newTestSpider(src, SpiderConfig{}, &memSink{})

	_, err := spider.Run(context.Background(), "seed")
	if !IsAPIKeyError(err) {
		t.Fatalf("Expected API key error, got %v", err)
	}
}

func TestSpider_IndexSink(t *testing.T) {
	idx, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	ctx := context.Background()
	if err := idx.CreateTables(ctx); err != nil {
		t.Fatal(err)
	}

	sink := NewIndexSink(idx, 2)
	spider := newTestSpider(crawlFixture(), SpiderConfig{}, sink)
	if _, err := spider.Run(ctx, "seed"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sink.Pushed() != 3 {
		t.Errorf("Pushed = %d, want 3", sink.Pushed())
	}
	if n, _ := idx.Count(ctx); n != 3 {
		t.Errorf("Index count = %d, want 3", n)
	}
}

func TestStats_String(t *testing.T) {
	s := Stats{PlayersProcessed: 2, MatchesWritten: 30, Elapsed: 90 * time.Second}.String()
	if s != "players=2 skipped=0 matches=30 failed=0 time=1m30s throughput=20.0/min" {
		t.Errorf("Unexpected summary %q", s)
	}
}

// Crawls a handful of live matches when a key is configured.
func TestSpider_Integration(t *testing.T) {
	key := os.Getenv("RIOT_API_KEY")
	seed := os.Getenv("RIOT_SEED_PUUID")
	if key == "" || seed == "" {
		t.Skip("RIOT_API_KEY or RIOT_SEED_PUUID not set, skipping integration test")
	}
	client, err := riot.NewClient(key)
	if err != nil {
		t.Fatal(err)
	}
	sink := &memSink{}
	spider := NewSpider(client, SpiderConfig{MaxMatches: 3, RankGate: func(string, string) bool { return true }}, sink)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	stats, err := spider.Run(ctx, seed)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	t.Logf("crawl: %s", stats)
}
