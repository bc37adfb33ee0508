package timeline

// Ward types counted by WardDistribution.
const (
	WardYellowTrinket = "YELLOW_TRINKET"
	WardControl       = "CONTROL_WARD"
	WardBlueTrinket   = "BLUE_TRINKET"
)

// WardTypes is the fixed set of ward types that are tallied.
var WardTypes = []string{WardYellowTrinket, WardControl, WardBlueTrinket}

// WardDistribution counts wards by type. Every tallied type is present in the
// result; types outside WardTypes are left out.
func WardDistribution[W ~struct{ Ward }](wards []W) map[string]int {
	counts := make(map[string]int, len(WardTypes))
	for _, t := range WardTypes {
		counts[t] = 0
	}
	for _, w := range wards {
		t := struct{ Ward }(w).WardType
		if _, ok := counts[t]; ok {
			counts[t]++
		}
	}
	return counts
}

// FeatRule marks one (featType, featValue) pair as significant for a
// category.
type FeatRule struct {
	Category string `json:"category" toml:"category"`
	Type     int    `json:"type" toml:"type"`
	Value    int    `json:"value" toml:"value"`
}

// FeatRules is the table FeatAdvantage consults.
type FeatRules []FeatRule

// DefaultFeatRules are the significant feats of the current ruleset: first
// to three kills, first turret, first to three epic objectives.
var DefaultFeatRules = FeatRules{
	{Category: "Kills", Type: 0, Value: 3},
	{Category: "Turret", Type: 1, Value: 1},
	{Category: "Objective", Type: 2, Value: 3},
}

func (r FeatRules) category(f FeatUpdate) (string, bool) {
	for _, rule := range r {
		if rule.Type == f.FeatType && rule.Value == f.FeatValue {
			return rule.Category, true
		}
	}
	return "", false
}

// FeatScore counts the distinct significant categories teamID secured.
func FeatScore(feats []FeatUpdate, teamID int, rules FeatRules) int {
	if rules == nil {
		rules = DefaultFeatRules
	}
	seen := make(map[string]bool)
	for _, f := range feats {
		if f.TeamID != teamID {
			continue
		}
		if c, ok := rules.category(f); ok {
			seen[c] = true
		}
	}
	return len(seen)
}

// FeatAdvantage reports whether teamID secured at least two significant feat
// categories.
func FeatAdvantage(feats []FeatUpdate, teamID int, rules FeatRules) bool {
	return FeatScore(feats, teamID, rules) > 1
}
