package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"rift-rewind/internal/lineup"
	"rift-rewind/internal/riot"
)

var fpSlots []string

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint [match.json ...]",
	Short: "Print the lineup fingerprint of matches or of a hand-written roster",
	Long: "Each match file is a saved match-v5 payload. Alternatively pass the ten\n" +
		"slots as --slot SIDE:ROLE:CHAMPION, e.g. --slot BLUE:TOP:Aatrox.",
	RunE: runFingerprint,
}

func init() {
	fingerprintCmd.Flags().StringSliceVar(&fpSlots, "slot", nil, "roster slot SIDE:ROLE:CHAMPION (repeatable)")
}

type fingerprintRow struct {
	Source      string `json:"source"`
	Canonical   string `json:"canonical"`
	Fingerprint string `json:"fingerprint"`
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && len(fpSlots) == 0 {
		return fmt.Errorf("pass match files or --slot values")
	}

	var rows []fingerprintRow
	if len(fpSlots) > 0 {
		roster, err := parseSlots(fpSlots)
		if err != nil {
			return err
		}
		rows = append(rows, fingerprintRow{Source: "slots", Canonical: roster.Key(), Fingerprint: lineup.Fingerprint(roster)})
	}
	for _, path := range args {
		m, err := readMatchFile(path)
		if err != nil {
			return err
		}
		roster := lineup.RosterFromMatch(m)
		rows = append(rows, fingerprintRow{Source: m.Metadata.MatchID, Canonical: roster.Key(), Fingerprint: lineup.Fingerprint(roster)})
	}
	return emit(cmd.OutOrStdout(), rows, printFingerprints)
}

func printFingerprints(w io.Writer, rows []fingerprintRow) {
	for _, r := range rows {
		fmt.Fprintf(w, "%s  %s\n  %s\n", r.Fingerprint, r.Source, r.Canonical)
	}
}

// parseSlots reads SIDE:ROLE:CHAMPION triples.
func parseSlots(values []string) (lineup.Roster, error) {
	roster := make(lineup.Roster, 0, len(values))
	for _, v := range values {
		parts := strings.SplitN(v, ":", 3)
		if len(parts) != 3 || strings.TrimSpace(parts[2]) == "" {
			return nil, fmt.Errorf("invalid slot %q, expected SIDE:ROLE:CHAMPION", v)
		}
		roster = append(roster, lineup.Slot{
			Side:     lineup.CanonSide(parts[0]),
			Role:     lineup.CanonRole(parts[1]),
			Champion: strings.TrimSpace(parts[2]),
		})
	}
	return roster, nil
}

func readMatchFile(path string) (*riot.MatchResponse, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m riot.MatchResponse
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &m, nil
}
