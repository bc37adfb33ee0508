package benchmark

import "testing"

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		vals []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{3}, 3},
		{"odd", []float64{5, 1, 3}, 3},
		{"even", []float64{1.0, 2.0, 3.0, 4.0}, 2.5},
		{"unsorted even", []float64{4, 1, 3, 2}, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Median(tt.vals); got != tt.want {
				t.Errorf("Median(%v) = %v, want %v", tt.vals, got, tt.want)
			}
		})
	}
}

func TestMedian_DoesNotReorderInput(t *testing.T) {
	vals := []float64{3, 1, 2}
	Median(vals)
	if vals[0] != 3 || vals[1] != 1 || vals[2] != 2 {
		t.Errorf("input modified: %v", vals)
	}
}

func TestComputeDeltas_KDA(t *testing.T) {
	peers := []Snapshot{{KDA: 1.0}, {KDA: 2.0}, {KDA: 3.0}, {KDA: 4.0}}
	med := ComputeMedians(peers)
	if med.KDA != 2.5 {
		t.Fatalf("median kda = %v, want 2.5", med.KDA)
	}
	d := ComputeDeltas(Snapshot{KDA: 4.5}, med)
	if d.KDA != 2.0 {
		t.Errorf("kda delta = %v, want 2.0", d.KDA)
	}
}

func TestComputeDeltas_Rounding(t *testing.T) {
	med := Medians{KDA: 1.111, CSPerMin: 6.333, Gold: 10000.25, WinRate: 0.5}
	d := ComputeDeltas(Snapshot{KDA: 2.5, CSPerMin: 7.0, Gold: 11000, Win: true}, med)

	if d.KDA != 1.39 {
		t.Errorf("kda delta = %v, want 1.39", d.KDA)
	}
	if d.CSPerMin != 0.67 {
		t.Errorf("cs/min delta = %v, want 0.67", d.CSPerMin)
	}
	if d.Gold != 999.8 {
		t.Errorf("gold delta = %v, want 999.8", d.Gold)
	}
	if d.Win != 0.5 {
		t.Errorf("win delta = %v, want 0.5", d.Win)
	}
}

func TestKDA(t *testing.T) {
	if got := KDA(5, 0, 3); got != 8 {
		t.Errorf("deathless KDA = %v, want 8", got)
	}
	if got := KDA(4, 2, 2); got != 3 {
		t.Errorf("KDA = %v, want 3", got)
	}
}
