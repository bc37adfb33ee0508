package benchmark

import (
	"math"
	"sort"
)

// Medians holds the per-metric peer medians.
type Medians struct {
	KDA      float64 `json:"kda"`
	CSPerMin float64 `json:"cs_per_min"`
	Gold     float64 `json:"gold"`
	WinRate  float64 `json:"winrate"`
}

// DeltaVector is subject minus peer median, per metric.
type DeltaVector struct {
	KDA      float64 `json:"kda"`
	CSPerMin float64 `json:"cs_per_min"`
	Gold     float64 `json:"gold"`
	Win      float64 `json:"win"`
}

// Median returns the median of vals, or 0 when vals is empty. vals is not
// modified.
func Median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// ComputeMedians takes the median of every metric across peers.
func ComputeMedians(peers []Snapshot) Medians {
	kdas := make([]float64, 0, len(peers))
	csmins := make([]float64, 0, len(peers))
	golds := make([]float64, 0, len(peers))
	wins := make([]float64, 0, len(peers))
	for _, p := range peers {
		kdas = append(kdas, p.KDA)
		csmins = append(csmins, p.CSPerMin)
		golds = append(golds, float64(p.Gold))
		wins = append(wins, boolToFloat(p.Win))
	}
	return Medians{
		KDA:      Median(kdas),
		CSPerMin: Median(csmins),
		Gold:     Median(golds),
		WinRate:  Median(wins),
	}
}

// ComputeDeltas subtracts the medians from subject. Rates round to two
// decimals and gold to one.
func ComputeDeltas(subject Snapshot, med Medians) DeltaVector {
	return DeltaVector{
		KDA:      round(subject.KDA-med.KDA, 2),
		CSPerMin: round(subject.CSPerMin-med.CSPerMin, 2),
		Gold:     round(float64(subject.Gold)-med.Gold, 1),
		Win:      round(boolToFloat(subject.Win)-med.WinRate, 2),
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
