package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rift-rewind/internal/db"
	"rift-rewind/internal/report"
	"rift-rewind/internal/storage"
)

var (
	ixWarmDir  string
	ixColdDir  string
	ixCompress bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Maintain the lineup index",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build [file.ndjson[.gz] ...]",
	Short: "Index normalized matches written by the collector",
	Long: "Reads one normalized match per line and upserts a lineup record for each.\n" +
		"Files ending in .gz are decompressed. With --warm, every closed archive file\n" +
		"in that directory is indexed, and --compress then moves it to the cold tier.",
	RunE: runIndexBuild,
}

var indexCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of indexed matches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		idx, err := openIndex(cmd.Context())
		if err != nil {
			return err
		}
		defer idx.Close()
		n, err := idx.Count(cmd.Context())
		if err != nil {
			return fmt.Errorf("count: %w", err)
		}
		return emit(cmd.OutOrStdout(), map[string]int{"records": n}, func(w io.Writer, m map[string]int) {
			fmt.Fprintf(w, "%d lineup records\n", m["records"])
		})
	},
}

func init() {
	f := indexBuildCmd.Flags()
	f.StringVar(&ixWarmDir, "warm", "", "index every .ndjson file in this directory")
	f.StringVar(&ixColdDir, "cold", "", "cold tier for --compress (default: sibling 'cold' of --warm)")
	f.BoolVar(&ixCompress, "compress", false, "gzip indexed --warm files into the cold tier")

	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexCountCmd)
}

func openIndex(ctx context.Context) (db.Index, error) {
	idx, err := db.Open(ctx, cfg.Store.Driver, cfg.Store.DSN, cfg.Store.AuthToken)
	if err != nil {
		return nil, fmt.Errorf("open lineup index: %w", err)
	}
	return idx, nil
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	paths := append([]string(nil), args...)
	var warm []string
	if ixWarmDir != "" {
		var err error
		warm, err = storage.WarmFiles(ixWarmDir)
		if err != nil {
			return fmt.Errorf("list warm files: %w", err)
		}
		paths = append(paths, warm...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("nothing to index: pass files or --warm")
	}

	ctx := cmd.Context()
	idx, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	stats := make([]db.BuildStats, 0, len(paths))
	for _, path := range paths {
		st, err := db.BuildIndexFile(ctx, path, idx, logger)
		if err != nil {
			return fmt.Errorf("index %s: %w", path, err)
		}
		stats = append(stats, st)
	}

	if ixCompress && len(warm) > 0 {
		coldDir := ixColdDir
		if coldDir == "" {
			coldDir = filepath.Join(filepath.Dir(filepath.Clean(ixWarmDir)), "cold")
		}
		if err := os.MkdirAll(coldDir, 0755); err != nil {
			return fmt.Errorf("create cold dir: %w", err)
		}
		for _, path := range warm {
			dst, err := storage.CompressToCold(path, coldDir)
			if err != nil {
				return fmt.Errorf("compress %s: %w", path, err)
			}
			logger.Info("archived", "file", dst)
		}
	}

	return emit(cmd.OutOrStdout(), stats, func(w io.Writer, st []db.BuildStats) {
		report.PrintBuild(w, paths, st)
	})
}
