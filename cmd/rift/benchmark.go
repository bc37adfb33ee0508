package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"rift-rewind/internal/benchmark"
	"rift-rewind/internal/lineup"
	"rift-rewind/internal/report"
	"rift-rewind/internal/riot"
	"rift-rewind/internal/service"
)

var (
	bmRiotID    string
	bmPUUID     string
	bmMatchIDs  []string
	bmTierBump  int
	bmSampleCap int
	bmLane      string
	bmPeersDir  string
	bmTier      string
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark [match.json]",
	Short: "Compare a player's match against peers who played the same lineup",
	Long: "Live mode samples higher-tier ladder players whose matches share the\n" +
		"lineup fingerprint and reports the player's deltas against their medians.\n\n" +
		"With --peers, the subject match file is compared against the saved matches\n" +
		"in that directory instead, without calling the API.",
	Args: cobra.MaximumNArgs(1),
	RunE: runBenchmark,
}

func init() {
	f := benchmarkCmd.Flags()
	f.StringVar(&bmRiotID, "riot-id", "", "player Riot ID (GameName#TagLine)")
	f.StringVar(&bmPUUID, "puuid", "", "player PUUID")
	f.StringSliceVar(&bmMatchIDs, "match-id", nil, "match to benchmark (repeatable, default most recent)")
	f.IntVar(&bmTierBump, "tier-bump", 0, "tiers above the player's to sample peers from (default from config)")
	f.IntVar(&bmSampleCap, "sample-cap", 0, "peer matches per lineup (default from config)")
	f.StringVar(&bmLane, "lane", "", "lane hint for the coaching text")
	f.StringVar(&bmPeersDir, "peers", "", "directory of saved peer matches (offline mode)")
	f.StringVar(&bmTier, "tier", riot.DefaultTier, "player tier in offline mode")
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	if bmPeersDir != "" {
		if len(args) != 1 || bmPUUID == "" {
			return fmt.Errorf("offline mode needs a match file argument and --puuid")
		}
		return runOfflineBenchmark(cmd.OutOrStdout(), args[0])
	}

	if bmRiotID == "" && bmPUUID == "" {
		return fmt.Errorf("one of --riot-id or --puuid is required")
	}
	p := service.Params{
		SelectedMatchIDs: bmMatchIDs,
		TierBump:         bmTierBump,
		SampleCap:        bmSampleCap,
		Lane:             bmLane,
	}
	if err := playerParams(&p, bmRiotID, bmPUUID); err != nil {
		return err
	}

	api, err := riotAPI()
	if err != nil {
		return err
	}
	res, err := newService(api, nil).Compare(cmd.Context(), p)
	if err != nil {
		return fmt.Errorf("benchmark: %w", err)
	}
	return emit(cmd.OutOrStdout(), res, report.PrintCompare)
}

type offlineResult struct {
	MatchID      string             `json:"matchId"`
	SignatureKey string             `json:"signatureKey"`
	UserSnapshot benchmark.Snapshot `json:"user_snapshot"`
	benchmark.Result
}

func runOfflineBenchmark(w io.Writer, subjectPath string) error {
	m, err := readMatchFile(subjectPath)
	if err != nil {
		return err
	}
	me, ok := m.FindParticipant(bmPUUID)
	if !ok {
		return fmt.Errorf("%s: player %s is not in the match", subjectPath, bmPUUID)
	}
	subject := benchmark.SnapshotOf(me, m.Info.GameDuration)
	key := lineup.Fingerprint(lineup.RosterFromMatch(m))

	peers, err := loadPeerMatches(bmPeersDir, key, m.Metadata.MatchID)
	if err != nil {
		return err
	}
	var snaps []benchmark.Snapshot
	for _, pm := range peers {
		snaps = append(snaps, benchmark.Counterparts(pm, benchmark.SideOf(me.TeamID), me.Position(), me.ChampionName)...)
	}

	bump := bmTierBump
	if bump <= 0 {
		bump = cfg.Bench.TierBump
	}
	res := offlineResult{
		MatchID:      m.Metadata.MatchID,
		SignatureKey: key,
		UserSnapshot: subject,
		Result:       benchmark.Summarize(subject, snaps, len(peers), riot.BumpTier(bmTier, bump)),
	}
	return emit(w, res, func(w io.Writer, r offlineResult) {
		fmt.Fprintf(w, "%s  %s %s  [%s]\n", r.MatchID, r.UserSnapshot.Champion, r.UserSnapshot.Role, r.SignatureKey)
		report.PrintBenchmark(w, r.UserSnapshot, r.Result)
	})
}

// loadPeerMatches reads the saved matches in dir whose lineup fingerprint is
// key, skipping the subject match itself.
func loadPeerMatches(dir, key, subjectID string) ([]*riot.MatchResponse, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []*riot.MatchResponse
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".timeline.json") {
			continue
		}
		pm, err := readMatchFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("skipping peer file", "file", name, "error", err)
			continue
		}
		if pm.Metadata.MatchID == subjectID || lineup.Fingerprint(lineup.RosterFromMatch(pm)) != key {
			continue
		}
		out = append(out, pm)
	}
	return out, nil
}
