package riot

const (
	QueueSoloDuo = "RANKED_SOLO_5x5"

	DefaultTier     = "GOLD"
	DefaultDivision = "IV"
)

// Tiers lists ranked tiers from lowest to highest.
var Tiers = []string{
	"IRON", "BRONZE", "SILVER", "GOLD", "PLATINUM",
	"EMERALD", "DIAMOND", "MASTER", "GRANDMASTER", "CHALLENGER",
}

// Tier order for comparison (higher index = higher rank)
var TierOrder = map[string]int{
	"IRON":        0,
	"BRONZE":      1,
	"SILVER":      2,
	"GOLD":        3,
	"PLATINUM":    4,
	"EMERALD":     5,
	"DIAMOND":     6,
	"MASTER":      7,
	"GRANDMASTER": 8,
	"CHALLENGER":  9,
}

// Division order (higher index = higher rank within tier)
var DivisionOrder = map[string]int{
	"IV":  0,
	"III": 1,
	"II":  2,
	"I":   3,
}

// IsApexTier reports whether tier has no divisions (Master and above).
func IsApexTier(tier string) bool {
	idx, ok := TierOrder[tier]
	return ok && idx >= TierOrder["MASTER"]
}

// Divisions returns the divisions to page through for a tier, highest first.
// Apex tiers only expose division I.
func Divisions(tier string) []string {
	if IsApexTier(tier) {
		return []string{"I"}
	}
	return []string{"I", "II", "III", "IV"}
}

// BumpTier advances tier by steps, clamped to the top of the ladder.
// Unknown tiers start from GOLD and negative steps count as zero.
func BumpTier(tier string, steps int) string {
	idx, ok := TierOrder[tier]
	if !ok {
		idx = TierOrder[DefaultTier]
	}
	if steps < 0 {
		steps = 0
	}
	idx += steps
	if idx >= len(Tiers) {
		idx = len(Tiers) - 1
	}
	return Tiers[idx]
}

// PickSoloTier returns the best solo queue tier and division among entries,
// or GOLD IV when the player is unranked there.
func PickSoloTier(entries []LeagueEntryResponse) (tier, division string) {
	best := -1
	for _, e := range entries {
		if e.QueueType != QueueSoloDuo {
			continue
		}
		tierIdx, ok := TierOrder[e.Tier]
		if !ok {
			continue
		}
		div := e.Rank
		if div == "" {
			div = DefaultDivision
		}
		score := tierIdx*len(DivisionOrder) + DivisionOrder[div]
		if score > best {
			best = score
			tier, division = e.Tier, div
		}
	}
	if best < 0 {
		return DefaultTier, DefaultDivision
	}
	return tier, division
}

// IsEmerald4OrHigher checks if the rank is Emerald 4 or above
func IsEmerald4OrHigher(tier, division string) bool {
	tierIdx, tierExists := TierOrder[tier]
	if !tierExists {
		return false
	}

	// Master+ tiers have no division and are all above Emerald
	if tierIdx >= TierOrder["MASTER"] {
		return true
	}

	if tierIdx < TierOrder["EMERALD"] {
		return false
	}

	if tierIdx > TierOrder["EMERALD"] {
		return true
	}

	_, divExists := DivisionOrder[division]
	return divExists
}
