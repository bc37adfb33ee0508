package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rift-rewind/internal/report"
	"rift-rewind/internal/service"
)

var (
	rcCount   int
	rcLane    string
	rcSummary bool
)

var recapCmd = &cobra.Command{
	Use:   "recap <GameName#TagLine>",
	Short: "Summarize a player's recent matches",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecap,
}

func init() {
	recapCmd.Flags().IntVar(&rcCount, "count", service.DefaultMatchCount, "matches to analyze (1-50)")
	recapCmd.Flags().StringVar(&rcLane, "lane", "", "lane hint for the coaching text")
	recapCmd.Flags().BoolVar(&rcSummary, "summary", false, "generate coaching text for the overview")
}

func runRecap(cmd *cobra.Command, args []string) error {
	p := service.Params{MatchCount: rcCount, Lane: rcLane}
	if err := playerParams(&p, args[0], ""); err != nil {
		return err
	}
	api, err := riotAPI()
	if err != nil {
		return err
	}
	svc := newService(api, nil)

	if rcSummary {
		res, err := svc.Summarize(cmd.Context(), p)
		if err != nil {
			return fmt.Errorf("recap: %w", err)
		}
		return emit(cmd.OutOrStdout(), res, func(w io.Writer, r *service.SummaryResult) {
			report.PrintRecap(w, &service.RecapResult{PlayerOverview: r.Overview})
			if r.Summary == "" {
				fmt.Fprintln(w, "(no summary: ANTHROPIC_API_KEY unset or generation failed)")
				return
			}
			fmt.Fprintf(w, "\n%s\n", r.Summary)
		})
	}

	res, err := svc.Recap(cmd.Context(), p)
	if err != nil {
		return fmt.Errorf("recap: %w", err)
	}
	return emit(cmd.OutOrStdout(), res, report.PrintRecap)
}
