package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"

	"rift-rewind/internal/db"
	"rift-rewind/internal/lineup"
	"rift-rewind/internal/riot"
	"rift-rewind/internal/service"
)

func init() {
	color.NoColor = true
}

// execute runs the root command with args. Flag values persist between
// calls, so every test passes the flags it relies on.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func fixtureMatch(id, puuid string, start int64) *riot.MatchResponse {
	champs := []string{"Aatrox", "Lee Sin", "Ahri", "Jinx", "Thresh", "Darius", "Vi", "Zed", "Kai'Sa", "Lulu"}
	roles := []string{"TOP", "JUNGLE", "MIDDLE", "BOTTOM", "UTILITY"}
	m := &riot.MatchResponse{
		Metadata: riot.MatchMetadata{MatchID: id},
		Info:     riot.MatchInfo{GameCreation: start, GameDuration: 1800, QueueID: 420},
	}
	for i, c := range champs {
		team := 100
		if i >= 5 {
			team = 200
		}
		p := riot.MatchParticipant{
			ParticipantID: i + 1,
			PUUID:         "p" + string(rune('a'+i)),
			ChampionName:  c,
			TeamID:        team,
			TeamPosition:  roles[i%5],
			Win:           team == 100,
			Kills:         i,
			Deaths:        2,
			Assists:       3,
			GoldEarned:    10000 + 100*i,
		}
		if i == 2 {
			p.PUUID = puuid
			p.RiotIdGameName, p.RiotIdTagline = "Tester", "NA1"
		}
		m.Metadata.Participants = append(m.Metadata.Participants, p.PUUID)
		m.Info.Participants = append(m.Info.Participants, p)
	}
	return m
}

func writeJSONFile(t *testing.T, path string, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestSplitRiotID(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		tag     string
		wantErr bool
	}{
		{"Faker#KR1", "Faker", "KR1", false},
		{" Doublelift # NA1 ", "Doublelift", "NA1", false},
		{"NoTag", "", "", true},
		{"#NA1", "", "", true},
		{"Name#", "", "", true},
	}
	for _, tt := range tests {
		name, tag, err := splitRiotID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("splitRiotID(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if name != tt.name || tag != tt.tag {
			t.Errorf("splitRiotID(%q) = %q, %q", tt.in, name, tag)
		}
	}
}

func TestParseSlots(t *testing.T) {
	roster, err := parseSlots([]string{"red:sup:Kai'Sa", "BLUE:middle: Ahri "})
	if err != nil {
		t.Fatalf("parseSlots: %v", err)
	}
	want := lineup.Roster{
		{Side: lineup.Red, Role: lineup.RoleSupport, Champion: "Kai'Sa"},
		{Side: lineup.Blue, Role: lineup.RoleMid, Champion: "Ahri"},
	}
	for i := range want {
		if roster[i] != want[i] {
			t.Errorf("slot %d = %+v, want %+v", i, roster[i], want[i])
		}
	}

	if _, err := parseSlots([]string{"BLUE:TOP"}); err == nil {
		t.Error("Expected error for a two-part slot")
	}
}

func TestFingerprintCommand_MatchFile(t *testing.T) {
	dir := t.TempDir()
	m := fixtureMatch("NA1_1", "me", 1000)
	path := filepath.Join(dir, "NA1_1.json")
	writeJSONFile(t, path, m)

	out, err := execute(t, "fingerprint", "--json", path)
	if err != nil {
		t.Fatalf("fingerprint: %v\n%s", err, out)
	}
	var rows []fingerprintRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(rows) != 1 || rows[0].Fingerprint != lineup.Fingerprint(lineup.RosterFromMatch(m)) {
		t.Errorf("unexpected rows %+v", rows)
	}
}

func TestTimelineCommand_Offline(t *testing.T) {
	dir := t.TempDir()
	writeJSONFile(t, filepath.Join(dir, "NA1_1.json"), fixtureMatch("NA1_1", "me", 1000))
	writeJSONFile(t, filepath.Join(dir, "NA1_1.timeline.json"), &riot.TimelineResponse{
		Metadata: riot.TimelineMetadata{MatchID: "NA1_1"},
		Info: riot.TimelineInfo{
			FrameInterval: 60000,
			Participants:  []riot.TimelineParticipant{{ParticipantID: 3, PUUID: "me"}},
			Frames: []riot.TimelineFrame{
				{Timestamp: 0, ParticipantFrames: map[string]riot.ParticipantFrame{"3": {ParticipantID: 3, Level: 1}}},
				{
					Timestamp: 60000,
					Events: []riot.TimelineEvent{
						{Type: "CHAMPION_KILL", Timestamp: 65000, KillerID: 3, VictimID: 8},
					},
					ParticipantFrames: map[string]riot.ParticipantFrame{"3": {ParticipantID: 3, Level: 2}},
				},
			},
		},
	})

	out, err := execute(t, "--dir", dir, "--no-summary", "--json", "timeline", "--puuid", "me")
	if err != nil {
		t.Fatalf("timeline: %v\n%s", err, out)
	}
	var res service.HighlightsResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if res.Timeline == nil || res.Timeline.MatchID != "NA1_1" || res.Timeline.KillCount != 1 {
		t.Errorf("unexpected timeline %+v", res.Timeline)
	}
}

func TestIndexBuildThenLineup(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LINEUP_STORE_DRIVER", "sqlite")
	t.Setenv("LINEUP_STORE_DSN", filepath.Join(dir, "index.db"))

	m := fixtureMatch("NA1_7", "me", 5000)
	matchPath := filepath.Join(dir, "NA1_7.json")
	writeJSONFile(t, matchPath, m)

	line, err := json.Marshal(db.Normalize(m))
	if err != nil {
		t.Fatal(err)
	}
	ndjson := filepath.Join(dir, "matches.ndjson")
	if err := os.WriteFile(ndjson, append(line, '\n'), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--json", "index", "build", ndjson)
	if err != nil {
		t.Fatalf("index build: %v\n%s", err, out)
	}
	var stats []db.BuildStats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode build output: %v\n%s", err, out)
	}
	if len(stats) != 1 || stats[0].Indexed != 1 {
		t.Fatalf("unexpected build stats %+v", stats)
	}

	out, err = execute(t, "--json", "--no-summary", "lineup", matchPath)
	if err != nil {
		t.Fatalf("lineup: %v\n%s", err, out)
	}
	var res service.LineupResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode lineup output: %v\n%s", err, out)
	}
	if !res.Found || res.MatchID != "NA1_7" {
		t.Errorf("unexpected lineup result %+v", res)
	}
	if res.Meta == nil || res.Meta.QueueID != 420 || res.Meta.DurationS != 1800 {
		t.Errorf("unexpected meta %+v", res.Meta)
	}
}

func TestBenchmarkCommand_OfflinePeers(t *testing.T) {
	dir := t.TempDir()
	subject := fixtureMatch("NA1_1", "me", 1000)
	subjectPath := filepath.Join(dir, "subject.json")
	writeJSONFile(t, subjectPath, subject)

	peers := filepath.Join(dir, "peers")
	if err := os.Mkdir(peers, 0755); err != nil {
		t.Fatal(err)
	}
	peer := fixtureMatch("PEER_1", "someone", 2000)
	peer.Info.Participants[2].Kills = 0
	writeJSONFile(t, filepath.Join(peers, "PEER_1.json"), peer)

	other := fixtureMatch("PEER_2", "someone", 3000)
	other.Info.Participants[2].ChampionName = "Syndra"
	writeJSONFile(t, filepath.Join(peers, "PEER_2.json"), other)

	out, err := execute(t, "--json", "benchmark", "--peers", peers, "--puuid", "me", "--tier", "GOLD", "--tier-bump", "1", subjectPath)
	if err != nil {
		t.Fatalf("benchmark: %v\n%s", err, out)
	}
	var res offlineResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if res.PeerMatches != 1 || res.SampleSize != 1 {
		t.Errorf("expected one counterpart from one peer match, got %+v", res.Result)
	}
	if res.TargetTier != "PLATINUM" {
		t.Errorf("TargetTier = %s, want PLATINUM", res.TargetTier)
	}
	// subject: (2+3)/2 = 2.5, peer: (0+3)/2 = 1.5
	if res.Deltas.KDA != 1 {
		t.Errorf("KDA delta = %v, want 1", res.Deltas.KDA)
	}
}
