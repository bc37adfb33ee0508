package collector

import (
	"context"
	"fmt"
	"sync"

	"rift-rewind/internal/db"
	"rift-rewind/internal/storage"
)

// Sink receives every normalized match the spider collects.
type Sink interface {
	Write(ctx context.Context, nm db.NormalizedMatch) error
	Flush(ctx context.Context) error
}

// ArchiveSink appends matches to rotating NDJSON files.
type ArchiveSink struct {
	rotator *storage.FileRotator
}

// NewArchiveSink wraps a rotator.
func NewArchiveSink(r *storage.FileRotator) *ArchiveSink {
	return &ArchiveSink{rotator: r}
}

func (a *ArchiveSink) Write(_ context.Context, nm db.NormalizedMatch) error {
	return a.rotator.WriteMatch(nm)
}

// Flush is a no-op; the rotator flushes every line.
func (a *ArchiveSink) Flush(context.Context) error { return nil }

// IndexSink pushes lineup records straight into the index in batches.
type IndexSink struct {
	idx       db.Index
	batchSize int

	mu      sync.Mutex
	pending []db.Record
	pushed  int
}

// NewIndexSink buffers up to batchSize records between pushes.
func NewIndexSink(idx db.Index, batchSize int) *IndexSink {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &IndexSink{idx: idx, batchSize: batchSize}
}

func (p *IndexSink) Write(ctx context.Context, nm db.NormalizedMatch) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pending = append(p.pending, nm.Record())
	if len(p.pending) < p.batchSize {
		return nil
	}
	return p.pushLocked(ctx)
}

// Flush pushes whatever is buffered.
func (p *IndexSink) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pushLocked(ctx)
}

// Pushed reports how many records reached the index.
func (p *IndexSink) Pushed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pushed
}

func (p *IndexSink) pushLocked(ctx context.Context) error {
	if len(p.pending) == 0 {
		return nil
	}
	if err := p.idx.PutRecords(ctx, p.pending); err != nil {
		return fmt.Errorf("failed to push %d lineup records: %w", len(p.pending), err)
	}
	p.pushed += len(p.pending)
	p.pending = p.pending[:0]
	return nil
}
