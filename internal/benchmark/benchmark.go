// Package benchmark compares a player's match against peers from a higher
// tier who played the same lineup.
package benchmark

import (
	"context"

	"rift-rewind/internal/lineup"
	"rift-rewind/internal/riot"
)

// Request describes one benchmark pass.
type Request struct {
	Subject Snapshot
	// Key is the lineup fingerprint peers must share.
	Key string
	// Tier is the subject's own tier; peers come from Tier bumped by TierBump.
	Tier      string
	TierBump  int
	SampleCap int
	// Side, Role and Champion select the counterpart in each peer match.
	// Leave Role and Champion empty to compare against all ten players.
	Side     lineup.Side
	Role     string
	Champion string
}

// Result is the outcome of a benchmark pass.
type Result struct {
	Deltas       DeltaVector `json:"deltas"`
	Medians      Medians     `json:"peer_medians"`
	SampleSize   int         `json:"peer_sample_size"`
	PeerMatches  int         `json:"peer_matches"`
	TargetTier   string      `json:"target_tier"`
	Insufficient bool        `json:"insufficient_sample"`
}

// Benchmarker runs benchmark passes against a Sampler.
type Benchmarker struct {
	Sampler *Sampler
}

// Benchmark samples peer matches and returns the subject's deltas against
// their medians. It always returns a valid Result; with no peers the deltas
// are zero and Insufficient is set.
func (b *Benchmarker) Benchmark(ctx context.Context, req Request) Result {
	target := riot.BumpTier(req.Tier, req.TierBump)
	matches := b.Sampler.Sample(ctx, req.Key, target, req.SampleCap)

	var peers []Snapshot
	for _, m := range matches {
		peers = append(peers, Counterparts(m, req.Side, req.Role, req.Champion)...)
	}
	return Summarize(req.Subject, peers, len(matches), target)
}

// Summarize builds a Result from an already settled peer sample.
func Summarize(subject Snapshot, peers []Snapshot, peerMatches int, targetTier string) Result {
	res := Result{
		SampleSize:  len(peers),
		PeerMatches: peerMatches,
		TargetTier:  targetTier,
	}
	if len(peers) == 0 {
		res.Insufficient = true
		return res
	}
	res.Medians = ComputeMedians(peers)
	res.Deltas = ComputeDeltas(subject, res.Medians)
	return res
}
