package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rift-rewind/internal/lineup"
	"rift-rewind/internal/report"
	"rift-rewind/internal/service"
)

var luSlots []string

var lineupCmd = &cobra.Command{
	Use:   "lineup [match.json]",
	Short: "Look up the most recent indexed match with the same lineup",
	Long: "The lineup comes from a saved match file or from ten --slot values\n" +
		"(SIDE:ROLE:CHAMPION).",
	Args: cobra.MaximumNArgs(1),
	RunE: runLineup,
}

func init() {
	lineupCmd.Flags().StringSliceVar(&luSlots, "slot", nil, "roster slot SIDE:ROLE:CHAMPION (repeatable)")
}

func runLineup(cmd *cobra.Command, args []string) error {
	var p service.Params
	switch {
	case len(args) == 1:
		m, err := readMatchFile(args[0])
		if err != nil {
			return err
		}
		p.Lineup = lineup.RosterFromMatch(m)
		p.QueueID = m.Info.QueueID
		p.DurationS = m.Info.GameDuration
	case len(luSlots) > 0:
		roster, err := parseSlots(luSlots)
		if err != nil {
			return err
		}
		p.Lineup = roster
	default:
		return fmt.Errorf("pass a match file or --slot values")
	}

	idx, err := openIndex(cmd.Context())
	if err != nil {
		return err
	}
	defer idx.Close()

	res, err := newService(nil, idx).CompareLineup(cmd.Context(), p)
	if err != nil {
		return fmt.Errorf("lineup: %w", err)
	}
	return emit(cmd.OutOrStdout(), res, report.PrintLineup)
}
