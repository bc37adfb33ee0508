package timeline

import "testing"

func TestWardDistribution_ExcludesUnknown(t *testing.T) {
	wards := []WardPlaced{
		{Ward{WardType: "YELLOW_TRINKET"}},
		{Ward{WardType: "YELLOW_TRINKET"}},
		{Ward{WardType: "CONTROL_WARD"}},
		{Ward{WardType: "SIGHT_WARD"}},
		{Ward{WardType: "UNDEFINED"}},
		{Ward{}},
	}

	dist := WardDistribution(wards)
	total := 0
	for _, n := range dist {
		total += n
	}
	if total > len(wards) {
		t.Errorf("Distribution total %d exceeds %d wards", total, len(wards))
	}
	if total != 3 {
		t.Errorf("Expected 3 tallied wards, got %d", total)
	}
	if dist[WardYellowTrinket] != 2 || dist[WardControl] != 1 || dist[WardBlueTrinket] != 0 {
		t.Errorf("Unexpected distribution %v", dist)
	}
	if _, ok := dist["SIGHT_WARD"]; ok {
		t.Error("Unrecognized ward type should not appear in the tally")
	}
}

func TestWardDistribution_Destroyed(t *testing.T) {
	dist := WardDistribution([]WardDestroyed{{Ward{WardType: "BLUE_TRINKET"}}})
	if dist[WardBlueTrinket] != 1 {
		t.Errorf("Expected one blue trinket, got %v", dist)
	}
}

func TestFeatAdvantage(t *testing.T) {
	feats := []FeatUpdate{
		{TeamID: 100, FeatType: 0, FeatValue: 3},
		{TeamID: 100, FeatType: 1, FeatValue: 1},
		{TeamID: 200, FeatType: 2, FeatValue: 3},
		{TeamID: 200, FeatType: 0, FeatValue: 1},
		{TeamID: 200, FeatType: 1, FeatValue: 0},
	}

	if !FeatAdvantage(feats, 100, DefaultFeatRules) {
		t.Error("Expected team 100 to have the feat advantage")
	}
	if FeatAdvantage(feats, 200, DefaultFeatRules) {
		t.Error("Expected team 200 not to have the feat advantage")
	}
}

func TestFeatScore_CategoryCountsOnce(t *testing.T) {
	feats := []FeatUpdate{
		{TeamID: 100, FeatType: 0, FeatValue: 3},
		{TeamID: 100, FeatType: 0, FeatValue: 3},
		{TeamID: 100, FeatType: 0, FeatValue: 3},
	}
	if got := FeatScore(feats, 100, nil); got != 1 {
		t.Errorf("FeatScore = %d, want 1", got)
	}
	if FeatAdvantage(feats, 100, nil) {
		t.Error("Repeating one category must not grant the advantage")
	}

	feats = append(feats,
		FeatUpdate{TeamID: 100, FeatType: 1, FeatValue: 1},
		FeatUpdate{TeamID: 100, FeatType: 2, FeatValue: 3},
	)
	if got := FeatScore(feats, 100, nil); got != 3 {
		t.Errorf("FeatScore = %d, want 3", got)
	}
}

func TestFeatScore_CustomRules(t *testing.T) {
	rules := FeatRules{{Category: "Kills", Type: 0, Value: 1}, {Category: "Turret", Type: 1, Value: 1}}
	feats := []FeatUpdate{{TeamID: 200, FeatType: 0, FeatValue: 1}, {TeamID: 200, FeatType: 1, FeatValue: 1}}
	if !FeatAdvantage(feats, 200, rules) {
		t.Error("Expected custom rule table to be honoured")
	}
	if FeatAdvantage(feats, 200, DefaultFeatRules) {
		t.Error("Default rules should not match these feats")
	}
}

func TestHighlights(t *testing.T) {
	pt := &ParticipantTimeline{
		TeamID:       100,
		FirstBlood:   true,
		FirstBloodAt: 180000,
		Sequences: Sequences{
			Kills: []Kill{
				{Takedown{KillStreak: 1, Bounty: 300, At: 180000}},
				{Takedown{KillStreak: 3, Bounty: 700, At: 900000}},
			},
			Plates: []TurretPlateDestroyed{{LaneType: "MID_LANE", At: 420000}},
			Monsters: []EliteMonsterKill{
				{MonsterType: "DRAGON", MonsterSubType: "FIRE_DRAGON", KillerTeamID: 100, At: 600000},
				{MonsterType: "BARON_NASHOR", KillerTeamID: 200, At: 1200000},
			},
		},
	}

	got := Highlights(pt)
	wantKinds := []string{HighlightFirstBlood, HighlightPlate, HighlightObjective, HighlightStreak, HighlightBounty}
	if len(got) != len(wantKinds) {
		t.Fatalf("Expected %d highlights, got %d: %+v", len(wantKinds), len(got), got)
	}
	for i, k := range wantKinds {
		if got[i].Kind != k {
			t.Errorf("highlight %d = %s, want %s", i, got[i].Kind, k)
		}
	}
	if got[2].Detail != "team secured FIRE_DRAGON" {
		t.Errorf("Unexpected objective detail %q", got[2].Detail)
	}
	if got[0].Clock != "3 minutes, 0 seconds" {
		t.Errorf("Unexpected clock %q", got[0].Clock)
	}
}
