// Package lineup canonicalizes a ten-player composition into a stable key.
package lineup

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"

	"rift-rewind/internal/riot"
)

// Side is BLUE or RED.
type Side string

const (
	Blue Side = "BLUE"
	Red  Side = "RED"
)

// Canonical roles.
const (
	RoleTop     = "TOP"
	RoleJungle  = "JUNGLE"
	RoleMid     = "MID"
	RoleADC     = "ADC"
	RoleSupport = "SUPPORT"
)

var roleSynonyms = map[string]string{
	"TOP":     RoleTop,
	"TOPLANE": RoleTop,
	"JUNGLE":  RoleJungle,
	"JG":      RoleJungle,
	"MID":     RoleMid,
	"MIDLANE": RoleMid,
	"MIDDLE":  RoleMid,
	"ADC":     RoleADC,
	"BOT":     RoleADC,
	"BOTTOM":  RoleADC,
	"SUPPORT": RoleSupport,
	"SUP":     RoleSupport,
	"UTILITY": RoleSupport,
}

// Slot is one player's place in a composition.
type Slot struct {
	Side     Side   `json:"side"`
	Role     string `json:"role"`
	Champion string `json:"champ"`
}

// Roster is a full composition, normally ten slots.
type Roster []Slot

// CanonRole maps free-text roles onto the five canonical ones. Anything
// unrecognized is MID.
func CanonRole(role string) string {
	if r, ok := roleSynonyms[strings.ToUpper(strings.TrimSpace(role))]; ok {
		return r
	}
	return RoleMid
}

// CanonChampion upper-cases a champion name and strips spaces and
// apostrophes, so "Kai'Sa" and "KAISA" compare equal.
func CanonChampion(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "", "'", "").Replace(name)
}

// CanonSide treats anything other than RED as BLUE.
func CanonSide(side string) Side {
	if strings.EqualFold(strings.TrimSpace(side), string(Red)) {
		return Red
	}
	return Blue
}

// Key is the pre-hash canonical form "BLUE tokens||RED tokens", with each side
// made of sorted ROLE:CHAMPION tokens joined by "|".
func (r Roster) Key() string {
	var blue, red []string
	for _, s := range r {
		token := CanonRole(s.Role) + ":" + CanonChampion(s.Champion)
		if CanonSide(string(s.Side)) == Red {
			red = append(red, token)
		} else {
			blue = append(blue, token)
		}
	}
	sort.Strings(blue)
	sort.Strings(red)
	return strings.Join(blue, "|") + "||" + strings.Join(red, "|")
}

// Fingerprint returns the SHA-1 hex digest of the roster's canonical form.
func Fingerprint(r Roster) string {
	sum := sha1.Sum([]byte(r.Key()))
	return hex.EncodeToString(sum[:])
}

// RosterFromMatch builds the composition of a match. Team 200 is RED, every
// other team id is BLUE.
func RosterFromMatch(m *riot.MatchResponse) Roster {
	roster := make(Roster, 0, len(m.Info.Participants))
	for _, p := range m.Info.Participants {
		side := Blue
		if p.TeamID == 200 {
			side = Red
		}
		roster = append(roster, Slot{Side: side, Role: p.Position(), Champion: p.ChampionName})
	}
	return roster
}
