package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rift-rewind/internal/report"
	"rift-rewind/internal/riot"
)

var rankCmd = &cobra.Command{
	Use:   "rank <GameName#TagLine>",
	Short: "Show a player's ranked entries and benchmark tier",
	Long: "Prints every ranked queue entry, the solo queue tier used as the\n" +
		"benchmark baseline, and whether the crawler would follow the player.",
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

type rankResult struct {
	PUUID    string                     `json:"puuid"`
	Tier     string                     `json:"tier"`
	Division string                     `json:"division"`
	Entries  []riot.LeagueEntryResponse `json:"entries"`
}

func runRank(cmd *cobra.Command, args []string) error {
	gameName, tagLine, err := splitRiotID(args[0])
	if err != nil {
		return err
	}
	api, err := riotAPI()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	account, err := api.GetAccountByRiotID(ctx, gameName, tagLine)
	if err != nil {
		return fmt.Errorf("lookup %s#%s: %w", gameName, tagLine, err)
	}
	entries, err := api.GetLeagueEntriesByPUUID(ctx, account.PUUID)
	if err != nil {
		return fmt.Errorf("ranked entries: %w", err)
	}

	res := rankResult{PUUID: account.PUUID, Entries: entries}
	res.Tier, res.Division = riot.PickSoloTier(entries)
	return emit(cmd.OutOrStdout(), res, func(w io.Writer, r rankResult) {
		fmt.Fprintf(w, "%s#%s\n", gameName, tagLine)
		report.PrintRank(w, r.Entries, riot.IsEmerald4OrHigher)
	})
}
