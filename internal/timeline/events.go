package timeline

import (
	"fmt"

	"rift-rewind/internal/riot"
)

// Kind discriminates classified events.
type Kind string

const (
	KindKill                 Kind = "KILL"
	KindDeath                Kind = "DEATH"
	KindAssist               Kind = "ASSIST"
	KindWardPlaced           Kind = "WARD_PLACED"
	KindWardDestroyed        Kind = "WARD_DESTROYED"
	KindItemPurchased        Kind = "ITEM_PURCHASED"
	KindItemSold             Kind = "ITEM_SOLD"
	KindItemDestroyed        Kind = "ITEM_DESTROYED"
	KindItemUndo             Kind = "ITEM_UNDO"
	KindLevelUp              Kind = "LEVEL_UP"
	KindSkillLevelUp         Kind = "SKILL_LEVEL_UP"
	KindEliteMonsterKill     Kind = "ELITE_MONSTER_KILL"
	KindBuildingKill         Kind = "BUILDING_KILL"
	KindTurretPlateDestroyed Kind = "TURRET_PLATE_DESTROYED"
	KindFeatUpdate           Kind = "FEAT_UPDATE"
	KindFirstBlood           Kind = "FIRST_BLOOD"
)

// Timestamp is elapsed match time in milliseconds.
type Timestamp int64

// String renders the timestamp as "M minutes, S seconds".
func (t Timestamp) String() string {
	return fmt.Sprintf("%d minutes, %d seconds", int64(t)/60000, (int64(t)/1000)%60)
}

// Minutes returns the elapsed time in fractional minutes.
func (t Timestamp) Minutes() float64 {
	return float64(t) / 60000
}

// Event is one classified timeline record. Values are immutable once built.
type Event interface {
	Kind() Kind
	Time() Timestamp
}

// ItemChange is the shared shape of purchase, sale and destruction.
type ItemChange struct {
	ItemID int       `json:"itemId"`
	At     Timestamp `json:"timestamp"`
}

type ItemPurchased struct{ ItemChange }
type ItemSold struct{ ItemChange }
type ItemDestroyed struct{ ItemChange }

func (e ItemPurchased) Kind() Kind      { return KindItemPurchased }
func (e ItemPurchased) Time() Timestamp { return e.At }
func (e ItemSold) Kind() Kind           { return KindItemSold }
func (e ItemSold) Time() Timestamp      { return e.At }
func (e ItemDestroyed) Kind() Kind      { return KindItemDestroyed }
func (e ItemDestroyed) Time() Timestamp { return e.At }

// ItemUndo reports before/after swapped relative to the raw event fields.
type ItemUndo struct {
	BeforeID int       `json:"beforeId"`
	AfterID  int       `json:"afterId"`
	At       Timestamp `json:"timestamp"`
}

func (e ItemUndo) Kind() Kind      { return KindItemUndo }
func (e ItemUndo) Time() Timestamp { return e.At }

type LevelUp struct {
	Level int       `json:"level"`
	At    Timestamp `json:"timestamp"`
}

func (e LevelUp) Kind() Kind      { return KindLevelUp }
func (e LevelUp) Time() Timestamp { return e.At }

// SkillLevelUp carries the ability key. Skill is empty for slots outside 1..4.
type SkillLevelUp struct {
	Skill string    `json:"skill,omitempty"`
	At    Timestamp `json:"timestamp"`
}

func (e SkillLevelUp) Kind() Kind      { return KindSkillLevelUp }
func (e SkillLevelUp) Time() Timestamp { return e.At }

// FirstBlood marks the tracked player's special kill. It only sets a flag.
type FirstBlood struct {
	At Timestamp `json:"timestamp"`
}

func (e FirstBlood) Kind() Kind      { return KindFirstBlood }
func (e FirstBlood) Time() Timestamp { return e.At }

type TurretPlateDestroyed struct {
	LaneType string    `json:"laneType,omitempty"`
	At       Timestamp `json:"timestamp"`
}

func (e TurretPlateDestroyed) Kind() Kind      { return KindTurretPlateDestroyed }
func (e TurretPlateDestroyed) Time() Timestamp { return e.At }

// Ward is the shared shape of placed and destroyed wards.
type Ward struct {
	WardType string    `json:"wardType,omitempty"`
	At       Timestamp `json:"timestamp"`
}

type WardPlaced struct{ Ward }
type WardDestroyed struct{ Ward }

func (e WardPlaced) Kind() Kind         { return KindWardPlaced }
func (e WardPlaced) Time() Timestamp    { return e.At }
func (e WardDestroyed) Kind() Kind      { return KindWardDestroyed }
func (e WardDestroyed) Time() Timestamp { return e.At }

// Participant is an id with the display name found in the kill's damage log.
type Participant struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Hit is one damage instance the victim received before dying.
type Hit struct {
	Name     string `json:"name"`
	Basic    bool   `json:"basic"`
	Magic    int    `json:"magic"`
	Physical int    `json:"physical"`
	True     int    `json:"true"`
	Spell    string `json:"spell"`
	Slot     int    `json:"slot"`
	Type     string `json:"type"`
}

// Takedown is the shared detail of kills, deaths and assists.
type Takedown struct {
	Killer         Participant    `json:"killer"`
	Assists        []Participant  `json:"assists"`
	Bounty         int            `json:"bounty"`
	ShutdownBounty int            `json:"shutdownBounty,omitempty"`
	KillStreak     int            `json:"killstreak"`
	Position       *riot.Position `json:"position,omitempty"`
	DamageReceived []Hit          `json:"damageReceived"`
	At             Timestamp      `json:"timestamp"`
}

type Kill struct{ Takedown }
type Death struct{ Takedown }
type Assist struct{ Takedown }

func (e Kill) Kind() Kind        { return KindKill }
func (e Kill) Time() Timestamp   { return e.At }
func (e Death) Kind() Kind       { return KindDeath }
func (e Death) Time() Timestamp  { return e.At }
func (e Assist) Kind() Kind      { return KindAssist }
func (e Assist) Time() Timestamp { return e.At }

type EliteMonsterKill struct {
	MonsterType    string         `json:"monsterType,omitempty"`
	MonsterSubType string         `json:"monsterSubType,omitempty"`
	Position       *riot.Position `json:"position,omitempty"`
	KillerID       int            `json:"killerId,omitempty"`
	KillerTeamID   int            `json:"killerTeamId"`
	At             Timestamp      `json:"timestamp"`
}

func (e EliteMonsterKill) Kind() Kind      { return KindEliteMonsterKill }
func (e EliteMonsterKill) Time() Timestamp { return e.At }

// FeatUpdate passes a feat-of-strength record through. Missing type or value
// is -1.
type FeatUpdate struct {
	TeamID    int       `json:"teamId"`
	FeatType  int       `json:"featType"`
	FeatValue int       `json:"featValue"`
	At        Timestamp `json:"timestamp"`
}

func (e FeatUpdate) Kind() Kind      { return KindFeatUpdate }
func (e FeatUpdate) Time() Timestamp { return e.At }

type BuildingKill struct {
	BuildingType string    `json:"buildingType"`
	KillerID     int       `json:"killerId"`
	LaneType     string    `json:"laneType"`
	TeamID       int       `json:"teamId"`
	TowerType    string    `json:"towerType,omitempty"`
	Assists      []int     `json:"assistingParticipantIds,omitempty"`
	At           Timestamp `json:"timestamp"`
}

func (e BuildingKill) Kind() Kind      { return KindBuildingKill }
func (e BuildingKill) Time() Timestamp { return e.At }
