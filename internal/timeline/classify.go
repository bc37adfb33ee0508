package timeline

import (
	"errors"
	"slices"

	"rift-rewind/internal/riot"
)

// ErrMalformedEvent is returned for a raw event without a type. It is fatal to
// that event only.
var ErrMalformedEvent = errors.New("timeline: event has no type")

// Raw event types the classifier dispatches on.
const (
	typeItemPurchased       = "ITEM_PURCHASED"
	typeItemDestroyed       = "ITEM_DESTROYED"
	typeItemSold            = "ITEM_SOLD"
	typeItemUndo            = "ITEM_UNDO"
	typeLevelUp             = "LEVEL_UP"
	typeSkillLevelUp        = "SKILL_LEVEL_UP"
	typeChampionSpecialKill = "CHAMPION_SPECIAL_KILL"
	typeTurretPlate         = "TURRET_PLATE_DESTROYED"
	typeWardPlaced          = "WARD_PLACED"
	typeWardKill            = "WARD_KILL"
	typeChampionKill        = "CHAMPION_KILL"
	typeEliteMonsterKill    = "ELITE_MONSTER_KILL"
	typeFeatUpdate          = "FEAT_UPDATE"
	typeBuildingKill        = "BUILDING_KILL"
	typeTowerBuilding       = "TOWER_BUILDING"
)

var skillKeys = map[int]string{1: "Q", 2: "W", 3: "E", 4: "R"}

// Classify maps one raw event onto a typed Event from the point of view of
// the tracked participant. A nil Event with a nil error means the event is
// not retained.
//
// Rules are tried in a fixed order and the first match wins. Once the
// event's own participantId equals tracked, only the item, level, skill and
// special-kill rules are considered. A tracked id below 1 matches nothing,
// since Riot uses 0 for "no participant".
func Classify(ev riot.TimelineEvent, tracked int) (Event, error) {
	if ev.Type == "" {
		return nil, ErrMalformedEvent
	}
	if tracked <= 0 {
		return nil, nil
	}
	at := Timestamp(ev.Timestamp)

	switch {
	case ev.ParticipantID == tracked:
		return classifyOwn(ev, at), nil

	case ev.Type == typeTurretPlate && ev.KillerID == tracked:
		return TurretPlateDestroyed{LaneType: ev.LaneType, At: at}, nil

	case ev.CreatorID == tracked && (ev.Type == typeWardPlaced || ev.Type == typeWardKill):
		w := Ward{WardType: ev.WardType, At: at}
		if ev.Type == typeWardPlaced {
			return WardPlaced{w}, nil
		}
		return WardDestroyed{w}, nil

	case slices.Contains(ev.AssistingParticipantIDs, tracked) && ev.Type == typeChampionKill:
		return Assist{takedown(ev, at)}, nil

	case ev.KillerID == tracked && ev.Type == typeChampionKill:
		return Kill{takedown(ev, at)}, nil

	case ev.VictimID == tracked:
		return Death{takedown(ev, at)}, nil

	case ev.Type == typeEliteMonsterKill:
		return EliteMonsterKill{
			MonsterType:    ev.MonsterType,
			MonsterSubType: ev.MonsterSubType,
			Position:       ev.Position,
			KillerID:       ev.KillerID,
			KillerTeamID:   ev.KillerTeamID,
			At:             at,
		}, nil

	case ev.Type == typeFeatUpdate:
		return FeatUpdate{
			TeamID:    ev.TeamID,
			FeatType:  intOr(ev.FeatType, -1),
			FeatValue: intOr(ev.FeatValue, -1),
			At:        at,
		}, nil

	case ev.Type == typeBuildingKill:
		b := BuildingKill{
			BuildingType: ev.BuildingType,
			KillerID:     ev.KillerID,
			LaneType:     ev.LaneType,
			TeamID:       ev.TeamID,
			Assists:      ev.AssistingParticipantIDs,
			At:           at,
		}
		if ev.BuildingType == typeTowerBuilding {
			b.TowerType = ev.TowerType
		}
		return b, nil
	}
	return nil, nil
}

func classifyOwn(ev riot.TimelineEvent, at Timestamp) Event {
	switch ev.Type {
	case typeItemPurchased:
		return ItemPurchased{ItemChange{ItemID: ev.ItemID, At: at}}
	case typeItemSold:
		return ItemSold{ItemChange{ItemID: ev.ItemID, At: at}}
	case typeItemDestroyed:
		return ItemDestroyed{ItemChange{ItemID: ev.ItemID, At: at}}
	case typeLevelUp:
		return LevelUp{Level: ev.Level, At: at}
	case typeSkillLevelUp:
		return SkillLevelUp{Skill: skillKeys[ev.SkillSlot], At: at}
	case typeChampionSpecialKill:
		return FirstBlood{At: at}
	case typeItemUndo:
		return ItemUndo{BeforeID: ev.AfterID, AfterID: ev.BeforeID, At: at}
	}
	return nil
}

func takedown(ev riot.TimelineEvent, at Timestamp) Takedown {
	names := make(map[int]string, len(ev.VictimDamageDealt)+len(ev.VictimDamageReceived))
	for _, h := range ev.VictimDamageDealt {
		names[h.ParticipantID] = h.Name
	}
	for _, h := range ev.VictimDamageReceived {
		names[h.ParticipantID] = h.Name
	}
	lookup := func(id int) Participant {
		name, ok := names[id]
		if !ok {
			name = "Unknown"
		}
		return Participant{ID: id, Name: name}
	}

	t := Takedown{
		Killer:         lookup(ev.KillerID),
		Assists:        make([]Participant, 0, len(ev.AssistingParticipantIDs)),
		Bounty:         ev.Bounty,
		ShutdownBounty: ev.ShutdownBounty,
		KillStreak:     ev.KillStreakLength,
		Position:       ev.Position,
		DamageReceived: make([]Hit, 0, len(ev.VictimDamageReceived)),
		At:             at,
	}
	for _, id := range ev.AssistingParticipantIDs {
		t.Assists = append(t.Assists, lookup(id))
	}
	for _, h := range ev.VictimDamageReceived {
		t.DamageReceived = append(t.DamageReceived, Hit{
			Name:     h.Name,
			Basic:    h.Basic,
			Magic:    h.MagicDamage,
			Physical: h.PhysicalDamage,
			True:     h.TrueDamage,
			Spell:    h.SpellName,
			Slot:     h.SpellSlot,
			Type:     h.Type,
		})
	}
	return t
}

func intOr(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}
