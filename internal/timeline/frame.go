package timeline

import (
	"io"
	"log/slog"
	"strconv"

	"rift-rewind/internal/riot"
)

// ResourceSnapshot is the tracked player's resource block at one frame.
type ResourceSnapshot struct {
	At                  Timestamp          `json:"timestamp"`
	TotalGold           int                `json:"totalGold"`
	CurrentGold         int                `json:"currentGold"`
	XP                  int                `json:"xp"`
	Level               int                `json:"level"`
	MinionsKilled       int                `json:"minionsKilled"`
	JungleMinionsKilled int                `json:"jungleMinionsKilled"`
	ChampionStats       riot.ChampionStats `json:"championStats"`
	DamageStats         riot.DamageStats   `json:"damageStats"`
}

// ItemRecord is one entry of the mixed item history.
type ItemRecord struct {
	Type     Kind      `json:"type"`
	ItemID   int       `json:"itemId,omitempty"`
	BeforeID int       `json:"beforeId,omitempty"`
	AfterID  int       `json:"afterId,omitempty"`
	At       Timestamp `json:"timestamp"`
}

// Sequences holds every per-kind ordered sequence collected for one player.
// Order is frame order, then event order within a frame.
type Sequences struct {
	Kills          []Kill                 `json:"kills"`
	Deaths         []Death                `json:"deaths"`
	Assists        []Assist               `json:"assists"`
	Items          []ItemRecord           `json:"items"`
	LevelUps       []LevelUp              `json:"levelUps"`
	Skills         []SkillLevelUp         `json:"skills"`
	WardsPlaced    []WardPlaced           `json:"wardsPlaced"`
	WardsDestroyed []WardDestroyed        `json:"wardsDestroyed"`
	Plates         []TurretPlateDestroyed `json:"platesDestroyed"`
	Monsters       []EliteMonsterKill     `json:"eliteMonsterKills"`
	Feats          []FeatUpdate           `json:"featUpdates"`
	Buildings      []BuildingKill         `json:"buildingKills"`
	Resources      []ResourceSnapshot     `json:"resources"`
}

// Accumulator is the running aggregation context threaded through frames.
type Accumulator struct {
	Sequences
	FirstBlood   bool
	FirstBloodAt Timestamp
	// Malformed counts events that were dropped for missing a type.
	Malformed int
	// MissingFrames counts frames without a resource block for the player.
	MissingFrames int
}

// NewAccumulator returns an accumulator seeded with the level 1 entry every
// champion starts at.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		Sequences: Sequences{
			LevelUps: []LevelUp{{Level: 1, At: 0}},
		},
	}
}

// Add routes one classified event into its sequence.
func (a *Accumulator) Add(e Event) {
	switch ev := e.(type) {
	case Kill:
		a.Kills = append(a.Kills, ev)
	case Death:
		a.Deaths = append(a.Deaths, ev)
	case Assist:
		a.Assists = append(a.Assists, ev)
	case ItemPurchased:
		a.Items = append(a.Items, ItemRecord{Type: KindItemPurchased, ItemID: ev.ItemID, At: ev.At})
	case ItemSold:
		a.Items = append(a.Items, ItemRecord{Type: KindItemSold, ItemID: ev.ItemID, At: ev.At})
	case ItemDestroyed:
		a.Items = append(a.Items, ItemRecord{Type: KindItemDestroyed, ItemID: ev.ItemID, At: ev.At})
	case ItemUndo:
		a.Items = append(a.Items, ItemRecord{Type: KindItemUndo, BeforeID: ev.BeforeID, AfterID: ev.AfterID, At: ev.At})
	case LevelUp:
		a.LevelUps = append(a.LevelUps, ev)
	case SkillLevelUp:
		a.Skills = append(a.Skills, ev)
	case WardPlaced:
		a.WardsPlaced = append(a.WardsPlaced, ev)
	case WardDestroyed:
		a.WardsDestroyed = append(a.WardsDestroyed, ev)
	case TurretPlateDestroyed:
		a.Plates = append(a.Plates, ev)
	case EliteMonsterKill:
		a.Monsters = append(a.Monsters, ev)
	case FeatUpdate:
		a.Feats = append(a.Feats, ev)
	case BuildingKill:
		a.Buildings = append(a.Buildings, ev)
	case FirstBlood:
		if !a.FirstBlood {
			a.FirstBlood = true
			a.FirstBloodAt = ev.At
		}
	}
}

// Aggregator folds frames into an Accumulator. The zero value is usable and
// discards diagnostics.
type Aggregator struct {
	Logger *slog.Logger
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func (g Aggregator) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return discard
}

// Frame classifies every event of frame in source order, then records the
// tracked participant's resource block.
func (g Aggregator) Frame(frame riot.TimelineFrame, tracked int, acc *Accumulator) {
	log := g.logger()
	for i, raw := range frame.Events {
		ev, err := Classify(raw, tracked)
		if err != nil {
			acc.Malformed++
			log.Warn("skipping malformed event", "frame_ts", frame.Timestamp, "index", i, "err", err)
			continue
		}
		if ev == nil {
			if observedOnly[raw.Type] {
				log.Debug("observed event", "type", raw.Type, "ts", raw.Timestamp)
			}
			continue
		}
		acc.Add(ev)
	}
	g.resources(frame, tracked, acc)
}

// resources appends the tracked participant's snapshot. A frame without one
// is skipped.
func (g Aggregator) resources(frame riot.TimelineFrame, tracked int, acc *Accumulator) {
	pf, ok := frame.ParticipantFrames[strconv.Itoa(tracked)]
	if !ok {
		acc.MissingFrames++
		g.logger().Warn("participant missing from frame", "participant", tracked, "frame_ts", frame.Timestamp)
		return
	}
	acc.Resources = append(acc.Resources, ResourceSnapshot{
		At:                  Timestamp(frame.Timestamp),
		TotalGold:           pf.TotalGold,
		CurrentGold:         pf.CurrentGold,
		XP:                  pf.XP,
		Level:               pf.Level,
		MinionsKilled:       pf.MinionsKilled,
		JungleMinionsKilled: pf.JungleMinionsKilled,
		ChampionStats:       pf.ChampionStats,
		DamageStats:         pf.DamageStats,
	})
}

// AggregateFrame folds one frame into acc without logging.
func AggregateFrame(frame riot.TimelineFrame, tracked int, acc *Accumulator) *Accumulator {
	Aggregator{}.Frame(frame, tracked, acc)
	return acc
}

var observedOnly = map[string]bool{
	"OBJECTIVE_BOUNTY_PRESTART": true,
	"DRAGON_SOUL_GIVEN":         true,
	"GAME_END":                  true,
}
