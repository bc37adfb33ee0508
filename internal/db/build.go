package db

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
)

const maxLineBytes = 4 << 20

// BuildStats reports what an index build did.
type BuildStats struct {
	Lines   int `json:"lines"`
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
}

// BuildIndex reads normalized matches, one JSON object per line, and upserts
// a record for each. Lines that fail to decode are skipped and counted.
func BuildIndex(ctx context.Context, r io.Reader, idx Index, logger *slog.Logger) (BuildStats, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var (
		stats BuildStats
		batch = make([]Record, 0, batchSize)
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := idx.PutRecords(ctx, batch); err != nil {
			return err
		}
		stats.Indexed += len(batch)
		batch = batch[:0]
		return nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		stats.Lines++

		var nm NormalizedMatch
		if err := json.Unmarshal(line, &nm); err != nil || nm.MatchID == "" {
			stats.Skipped++
			logger.Warn("skipping index line", "line", stats.Lines, "err", err)
			continue
		}
		batch = append(batch, nm.Record())
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read matches: %w", err)
	}
	return stats, flush()
}

// BuildIndexFile runs BuildIndex over path, decompressing .gz files.
func BuildIndexFile(ctx context.Context, path string, idx Index, logger *slog.Logger) (BuildStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return BuildStats{}, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return BuildStats{}, fmt.Errorf("open gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	return BuildIndex(ctx, r, idx, logger)
}
