package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"rift-rewind/internal/benchmark"
	"rift-rewind/internal/db"
	"rift-rewind/internal/riot"
	"rift-rewind/internal/service"
	"rift-rewind/internal/timeline"
)

func init() {
	color.NoColor = true
}

func TestFormatDelta(t *testing.T) {
	tests := []struct {
		v      float64
		places int
		want   string
	}{
		{1.2, 2, "+1.20"},
		{-0.5, 2, "-0.50"},
		{0, 2, "0.00"},
		{350, 0, "+350"},
	}
	for _, tt := range tests {
		if got := FormatDelta(tt.v, tt.places); got != tt.want {
			t.Errorf("FormatDelta(%v, %d) = %q, want %q", tt.v, tt.places, got, tt.want)
		}
	}
}

func TestPrintBenchmark_InsufficientNote(t *testing.T) {
	var buf bytes.Buffer
	PrintBenchmark(&buf, benchmark.Snapshot{KDA: 3, CSPerMin: 7.5, Gold: 12000, Win: true},
		benchmark.Result{TargetTier: "PLATINUM", Insufficient: true})

	out := buf.String()
	for _, want := range []string{"KDA", "CS/MIN", "0 peers from 0 matches at PLATINUM", "insufficient sample"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintHighlights(t *testing.T) {
	pt := &timeline.ParticipantTimeline{MatchID: "NA1_1", Champion: "Ahri", Role: "MIDDLE", DurationS: 1800, Win: true, KillCount: 7}
	res := &service.HighlightsResult{
		Timeline:    pt,
		WardsPlaced: map[string]int{"YELLOW_TRINKET": 4},
		Highlights:  []timeline.Highlight{{Kind: "first_blood", Clock: "03:12", Detail: "First blood"}},
		Summary:     "Nice game.",
	}
	var buf bytes.Buffer
	PrintHighlights(&buf, res)

	out := buf.String()
	for _, want := range []string{"NA1_1", "Victory", "30 minutes, 0 seconds", "first_blood", "YELLOW_TRINKET", "Nice game."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintLineup_NotFound(t *testing.T) {
	var buf bytes.Buffer
	PrintLineup(&buf, &service.LineupResult{LineupKey: "abc"})
	if !strings.Contains(buf.String(), "No indexed match") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	buf.Reset()
	PrintLineup(&buf, &service.LineupResult{
		Found:      true,
		LineupKey:  "abc",
		MatchID:    "NA1_9",
		Historical: &db.Summary{Blue: db.SideStats{Kills: 21, Win: true}, Red: db.SideStats{Kills: 9}},
	})
	for _, want := range []string{"NA1_9", "BLUE", "RED", "21"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestPrintRank_Gate(t *testing.T) {
	entries := []riot.LeagueEntryResponse{
		{QueueType: riot.QueueSoloDuo, Tier: "EMERALD", Rank: "IV", LeaguePoints: 12},
		{QueueType: "RANKED_FLEX_SR", Tier: "GOLD", Rank: "I"},
	}
	var buf bytes.Buffer
	PrintRank(&buf, entries, riot.IsEmerald4OrHigher)
	out := buf.String()
	for _, want := range []string{"Solo/Duo", "Flex", "Benchmark tier: EMERALD IV", "Crawler: PASS"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	PrintRank(&buf, nil, riot.IsEmerald4OrHigher)
	out = buf.String()
	if !strings.Contains(out, "unranked") || !strings.Contains(out, "GOLD IV") || !strings.Contains(out, "Crawler: SKIP") {
		t.Errorf("unranked output:\n%s", out)
	}
}

func TestPrintBuild_Total(t *testing.T) {
	var buf bytes.Buffer
	PrintBuild(&buf, []string{"a.ndjson", "b.ndjson.gz"}, []db.BuildStats{
		{Lines: 3, Indexed: 2, Skipped: 1},
		{Lines: 5, Indexed: 5},
	})
	if !strings.Contains(buf.String(), "TOTAL") || !strings.Contains(buf.String(), "b.ndjson.gz") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
