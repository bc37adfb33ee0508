package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rift-rewind/internal/report"
	"rift-rewind/internal/service"
)

var (
	tlRiotID string
	tlPUUID  string
)

var timelineCmd = &cobra.Command{
	Use:   "timeline [match-id]",
	Short: "Aggregate one player's match timeline",
	Long: "Classify every timeline event of a match from the player's point of view\n" +
		"and print the per-kind totals, highlights and ward distributions.\n" +
		"Without a match id the player's most recent match is used.",
	Args: cobra.MaximumNArgs(1),
	RunE: runTimeline,
}

func init() {
	timelineCmd.Flags().StringVar(&tlRiotID, "riot-id", "", "player Riot ID (GameName#TagLine)")
	timelineCmd.Flags().StringVar(&tlPUUID, "puuid", "", "player PUUID")
}

func runTimeline(cmd *cobra.Command, args []string) error {
	if tlRiotID == "" && tlPUUID == "" {
		return fmt.Errorf("one of --riot-id or --puuid is required")
	}
	p := service.Params{}
	if err := playerParams(&p, tlRiotID, tlPUUID); err != nil {
		return err
	}
	if len(args) == 1 {
		p.MatchID = args[0]
	}

	api, err := riotAPI()
	if err != nil {
		return err
	}
	res, err := newService(api, nil).MatchHighlights(cmd.Context(), p)
	if err != nil {
		return fmt.Errorf("timeline: %w", err)
	}
	return emit(cmd.OutOrStdout(), res, report.PrintHighlights)
}
