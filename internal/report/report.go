// Package report renders action results as terminal tables.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"rift-rewind/internal/benchmark"
	"rift-rewind/internal/db"
	"rift-rewind/internal/riot"
	"rift-rewind/internal/service"
	"rift-rewind/internal/timeline"
)

var (
	cUp    = color.New(color.FgGreen)
	cDown  = color.New(color.FgRed)
	cMuted = color.New(color.Faint)
	cTitle = color.New(color.FgCyan, color.Bold)
)

// WriteJSON pretty-prints v.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatDelta renders a signed delta, green above zero and red below.
func FormatDelta(v float64, places int) string {
	s := strconv.FormatFloat(v, 'f', places, 64)
	switch {
	case v > 0:
		return cUp.Sprint("+" + s)
	case v < 0:
		return cDown.Sprint(s)
	}
	return s
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

func title(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, cTitle.Sprintf(format, args...))
}

// PrintHighlights prints one player's match: totals, notable moments and
// ward distributions.
func PrintHighlights(w io.Writer, res *service.HighlightsResult) {
	pt := res.Timeline
	outcome := "Defeat"
	if pt.Win {
		outcome = "Victory"
	}
	title(w, "\n%s  |  %s %s  |  %s  |  %s", pt.MatchID, pt.Champion, pt.Role, outcome, timeline.Timestamp(int64(pt.DurationS)*1000))

	table := newTable(w)
	table.Header("K", "D", "A", "ITEMS", "LEVELS", "SKILLS", "WARDS+", "WARDS-", "PLATES", "EPICS", "BUILDINGS", "FEAT", "FEAT_ADV")
	table.Append(
		strconv.Itoa(pt.KillCount),
		strconv.Itoa(pt.DeathCount),
		strconv.Itoa(pt.AssistCount),
		strconv.Itoa(len(pt.Items)),
		strconv.Itoa(len(pt.LevelUps)),
		strconv.Itoa(len(pt.Skills)),
		strconv.Itoa(len(pt.WardsPlaced)),
		strconv.Itoa(len(pt.WardsDestroyed)),
		strconv.Itoa(len(pt.Plates)),
		strconv.Itoa(len(pt.Monsters)),
		strconv.Itoa(len(pt.Buildings)),
		strconv.Itoa(res.FeatScore),
		strconv.FormatBool(res.FeatAdvantage),
	)
	table.Render()

	if len(res.Highlights) > 0 {
		title(w, "\nHighlights")
		ht := newTable(w)
		ht.Header("CLOCK", "KIND", "DETAIL")
		for _, h := range res.Highlights {
			ht.Append(h.Clock, h.Kind, h.Detail)
		}
		ht.Render()
	}

	if len(res.WardsPlaced)+len(res.WardsDestroyed) > 0 {
		title(w, "\nWards")
		wt := newTable(w)
		wt.Header("TYPE", "PLACED", "DESTROYED")
		for _, kind := range unionKeys(res.WardsPlaced, res.WardsDestroyed) {
			wt.Append(kind, strconv.Itoa(res.WardsPlaced[kind]), strconv.Itoa(res.WardsDestroyed[kind]))
		}
		wt.Render()
	}
	printSummary(w, res.Summary)
}

// PrintRecap prints the overview and the recent game list.
func PrintRecap(w io.Writer, res *service.RecapResult) {
	ov := res.PlayerOverview
	title(w, "\n%d games  |  %d wins (%.1f%%)  |  KDA %.2f  |  CS/min %.2f  |  %s",
		ov.GamesAnalyzed, ov.Wins, ov.Winrate, ov.KDA, ov.CSPerMin, res.HiddenGem)

	table := newTable(w)
	table.Header("MATCH", "MODE", "CHAMPION", "ROLE", "K", "D", "A", "KDA", "CS/MIN", "GOLD", "RESULT")
	for _, g := range res.RecentGames {
		result := "L"
		if g.Win {
			result = "W"
		}
		table.Append(
			g.MatchID,
			g.GameMode,
			g.Champion,
			g.Role,
			strconv.Itoa(g.Kills),
			strconv.Itoa(g.Deaths),
			strconv.Itoa(g.Assists),
			fmt.Sprintf("%.2f", g.KDA),
			fmt.Sprintf("%.2f", g.CSPerMin),
			strconv.Itoa(g.Gold),
			result,
		)
	}
	table.Render()
}

// PrintBenchmark prints the subject against the peer medians of one pass.
func PrintBenchmark(w io.Writer, subject benchmark.Snapshot, r benchmark.Result) {
	table := newTable(w)
	table.Header("METRIC", "YOU", "PEERS", "DELTA")
	table.Append("KDA", fmt.Sprintf("%.2f", subject.KDA), fmt.Sprintf("%.2f", r.Medians.KDA), FormatDelta(r.Deltas.KDA, 2))
	table.Append("CS/MIN", fmt.Sprintf("%.2f", subject.CSPerMin), fmt.Sprintf("%.2f", r.Medians.CSPerMin), FormatDelta(r.Deltas.CSPerMin, 2))
	table.Append("GOLD", strconv.Itoa(subject.Gold), fmt.Sprintf("%.0f", r.Medians.Gold), FormatDelta(r.Deltas.Gold, 0))
	table.Append("WIN", strconv.FormatBool(subject.Win), fmt.Sprintf("%.2f", r.Medians.WinRate), FormatDelta(r.Deltas.Win, 2))
	table.Render()

	note := fmt.Sprintf("%d peers from %d matches at %s", r.SampleSize, r.PeerMatches, r.TargetTier)
	if r.Insufficient {
		note += " (insufficient sample, deltas are zero)"
	}
	fmt.Fprintln(w, cMuted.Sprint(note))
}

// PrintCompare prints every benchmarked match of a compare run.
func PrintCompare(w io.Writer, res *service.CompareResult) {
	title(w, "\n%s -> %s  (%s / %s)", res.UserTier, res.TargetTier, res.RoutingRegion, res.PlatformRegion)
	if len(res.Signatures) == 0 {
		fmt.Fprintln(w, cMuted.Sprint("No matches benchmarked."))
	}
	for _, sig := range res.Signatures {
		title(w, "\n%s  %s %s  [%s]", sig.MatchID, sig.UserSnapshot.Champion, sig.UserSnapshot.Role, shortKey(sig.SignatureKey))
		PrintBenchmark(w, sig.UserSnapshot, sig.Result)
	}
	printSummary(w, res.Coaching)
}

// PrintLineup prints a lineup lookup.
func PrintLineup(w io.Writer, res *service.LineupResult) {
	title(w, "\nLineup %s", res.LineupKey)
	if !res.Found {
		fmt.Fprintln(w, cMuted.Sprint("No indexed match with this lineup."))
		return
	}
	fmt.Fprintf(w, "Most recent match: %s\n", res.MatchID)
	if h := res.Historical; h != nil {
		table := newTable(w)
		table.Header("SIDE", "K", "D", "A", "CS", "GOLD", "WIN")
		for _, row := range []struct {
			name string
			s    db.SideStats
		}{{"BLUE", h.Blue}, {"RED", h.Red}} {
			table.Append(row.name,
				strconv.Itoa(row.s.Kills),
				strconv.Itoa(row.s.Deaths),
				strconv.Itoa(row.s.Assists),
				strconv.Itoa(row.s.CS),
				strconv.Itoa(row.s.Gold),
				strconv.FormatBool(row.s.Win),
			)
		}
		table.Render()
	}
	printSummary(w, res.Summary)
}

// PrintRank prints a player's ranked entries and whether the crawler's rank
// gate admits them.
func PrintRank(w io.Writer, entries []riot.LeagueEntryResponse, gate func(tier, division string) bool) {
	if len(entries) == 0 {
		fmt.Fprintln(w, cMuted.Sprint("No ranked entries found (unranked)"))
	} else {
		table := newTable(w)
		table.Header("QUEUE", "TIER", "DIV", "LP", "W", "L")
		for _, e := range entries {
			table.Append(queueName(e.QueueType), e.Tier, e.Rank,
				strconv.Itoa(e.LeaguePoints), strconv.Itoa(e.Wins), strconv.Itoa(e.Losses))
		}
		table.Render()
	}

	tier, div := riot.PickSoloTier(entries)
	fmt.Fprintf(w, "Benchmark tier: %s %s\n", tier, div)
	if gate == nil {
		return
	}
	if hasSolo(entries) && gate(tier, div) {
		fmt.Fprintln(w, cUp.Sprint("Crawler: PASS"))
	} else {
		fmt.Fprintln(w, cDown.Sprint("Crawler: SKIP"))
	}
}

// PrintBuild prints per-file index build counts and their total.
func PrintBuild(w io.Writer, paths []string, stats []db.BuildStats) {
	table := newTable(w)
	table.Header("FILE", "LINES", "INDEXED", "SKIPPED")
	var total db.BuildStats
	for i, st := range stats {
		table.Append(paths[i], strconv.Itoa(st.Lines), strconv.Itoa(st.Indexed), strconv.Itoa(st.Skipped))
		total.Lines += st.Lines
		total.Indexed += st.Indexed
		total.Skipped += st.Skipped
	}
	table.Append("TOTAL", strconv.Itoa(total.Lines), strconv.Itoa(total.Indexed), strconv.Itoa(total.Skipped))
	table.Render()
}

func printSummary(w io.Writer, text string) {
	if text == "" {
		return
	}
	title(w, "\nSummary")
	fmt.Fprintln(w, text)
}

func queueName(q string) string {
	switch q {
	case riot.QueueSoloDuo:
		return "Solo/Duo"
	case "RANKED_FLEX_SR":
		return "Flex"
	}
	return q
}

func hasSolo(entries []riot.LeagueEntryResponse) bool {
	for _, e := range entries {
		if e.QueueType == riot.QueueSoloDuo {
			return true
		}
	}
	return false
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}

func unionKeys(a, b map[string]int) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var keys []string
	for _, m := range []map[string]int{a, b} {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}
