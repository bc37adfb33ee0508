package riot

// AccountResponse represents the response from /riot/account/v1/accounts/by-riot-id
type AccountResponse struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// SummonerResponse represents the response from /lol/summoner/v4/summoners
type SummonerResponse struct {
	ID            string `json:"id"`
	PUUID         string `json:"puuid"`
	SummonerLevel int    `json:"summonerLevel"`
}

// MatchResponse represents the response from /lol/match/v5/matches/{matchId}
type MatchResponse struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // PUUIDs
}

type MatchInfo struct {
	GameCreation int64              `json:"gameCreation"`
	GameDuration int                `json:"gameDuration"` // seconds
	GameMode     string             `json:"gameMode"`
	GameType     string             `json:"gameType"`
	GameVersion  string             `json:"gameVersion"`
	QueueID      int                `json:"queueId"`
	Participants []MatchParticipant `json:"participants"`
	Teams        []MatchTeam        `json:"teams"`
}

type MatchTeam struct {
	TeamID int  `json:"teamId"`
	Win    bool `json:"win"`
}

type MatchParticipant struct {
	ParticipantID        int    `json:"participantId"`
	PUUID                string `json:"puuid"`
	RiotIdGameName       string `json:"riotIdGameName"`
	RiotIdTagline        string `json:"riotIdTagline"`
	ChampionID           int    `json:"championId"`
	ChampionName         string `json:"championName"`
	TeamID               int    `json:"teamId"`       // 100 or 200
	TeamPosition         string `json:"teamPosition"` // TOP, JUNGLE, MIDDLE, BOTTOM, UTILITY
	Role                 string `json:"role"`
	Win                  bool   `json:"win"`
	Kills                int    `json:"kills"`
	Deaths               int    `json:"deaths"`
	Assists              int    `json:"assists"`
	TotalMinionsKilled   int    `json:"totalMinionsKilled"`
	NeutralMinionsKilled int    `json:"neutralMinionsKilled"`
	GoldEarned           int    `json:"goldEarned"`
	VisionScore          int    `json:"visionScore"`
	Item0                int    `json:"item0"`
	Item1                int    `json:"item1"`
	Item2                int    `json:"item2"`
	Item3                int    `json:"item3"`
	Item4                int    `json:"item4"`
	Item5                int    `json:"item5"`
	Item6                int    `json:"item6"` // Trinket
}

// CS is lane plus jungle minions.
func (p MatchParticipant) CS() int {
	return p.TotalMinionsKilled + p.NeutralMinionsKilled
}

// Position returns teamPosition, falling back to the legacy role field.
func (p MatchParticipant) Position() string {
	if p.TeamPosition != "" {
		return p.TeamPosition
	}
	return p.Role
}

// FindParticipant returns the roster entry for puuid.
func (m *MatchResponse) FindParticipant(puuid string) (MatchParticipant, bool) {
	for _, p := range m.Info.Participants {
		if p.PUUID == puuid {
			return p, true
		}
	}
	return MatchParticipant{}, false
}

// TimelineResponse represents the response from /lol/match/v5/matches/{matchId}/timeline
type TimelineResponse struct {
	Metadata TimelineMetadata `json:"metadata"`
	Info     TimelineInfo     `json:"info"`
}

type TimelineMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // PUUIDs
}

type TimelineInfo struct {
	FrameInterval int                   `json:"frameInterval"`
	Frames        []TimelineFrame       `json:"frames"`
	Participants  []TimelineParticipant `json:"participants"`
}

type TimelineParticipant struct {
	ParticipantID int    `json:"participantId"`
	PUUID         string `json:"puuid"`
}

// TimelineFrame is one periodic snapshot. ParticipantFrames is keyed by the
// participant id rendered as a string ("1".."10").
type TimelineFrame struct {
	Timestamp         int                         `json:"timestamp"`
	Events            []TimelineEvent             `json:"events"`
	ParticipantFrames map[string]ParticipantFrame `json:"participantFrames"`
}

type ParticipantFrame struct {
	ParticipantID       int           `json:"participantId"`
	TotalGold           int           `json:"totalGold"`
	CurrentGold         int           `json:"currentGold"`
	XP                  int           `json:"xp"`
	Level               int           `json:"level"`
	MinionsKilled       int           `json:"minionsKilled"`
	JungleMinionsKilled int           `json:"jungleMinionsKilled"`
	ChampionStats       ChampionStats `json:"championStats"`
	DamageStats         DamageStats   `json:"damageStats"`
}

type ChampionStats struct {
	AbilityHaste         int `json:"abilityHaste"`
	AbilityPower         int `json:"abilityPower"`
	Armor                int `json:"armor"`
	ArmorPen             int `json:"armorPen"`
	ArmorPenPercent      int `json:"armorPenPercent"`
	AttackDamage         int `json:"attackDamage"`
	AttackSpeed          int `json:"attackSpeed"`
	BonusArmorPenPercent int `json:"bonusArmorPenPercent"`
	BonusMagicPenPercent int `json:"bonusMagicPenPercent"`
	CCReduction          int `json:"ccReduction"`
	CooldownReduction    int `json:"cooldownReduction"`
	Health               int `json:"health"`
	HealthMax            int `json:"healthMax"`
	HealthRegen          int `json:"healthRegen"`
	Lifesteal            int `json:"lifesteal"`
	MagicPen             int `json:"magicPen"`
	MagicPenPercent      int `json:"magicPenPercent"`
	MagicResist          int `json:"magicResist"`
	MovementSpeed        int `json:"movementSpeed"`
	Omnivamp             int `json:"omnivamp"`
	PhysicalVamp         int `json:"physicalVamp"`
	Power                int `json:"power"`
	PowerMax             int `json:"powerMax"`
	PowerRegen           int `json:"powerRegen"`
	SpellVamp            int `json:"spellVamp"`
}

type DamageStats struct {
	MagicDamageDone               int `json:"magicDamageDone"`
	MagicDamageDoneToChampions    int `json:"magicDamageDoneToChampions"`
	MagicDamageTaken              int `json:"magicDamageTaken"`
	PhysicalDamageDone            int `json:"physicalDamageDone"`
	PhysicalDamageDoneToChampions int `json:"physicalDamageDoneToChampions"`
	PhysicalDamageTaken           int `json:"physicalDamageTaken"`
	TotalDamageDone               int `json:"totalDamageDone"`
	TotalDamageDoneToChampions    int `json:"totalDamageDoneToChampions"`
	TotalDamageTaken              int `json:"totalDamageTaken"`
	TrueDamageDone                int `json:"trueDamageDone"`
	TrueDamageDoneToChampions     int `json:"trueDamageDoneToChampions"`
	TrueDamageTaken               int `json:"trueDamageTaken"`
}

// TimelineEvent is the union of every event kind the timeline emits. Fields
// that a given kind does not carry stay at their zero value.
type TimelineEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`

	ParticipantID int `json:"participantId,omitempty"`

	// Items
	ItemID   int `json:"itemId,omitempty"`
	AfterID  int `json:"afterId,omitempty"`
	BeforeID int `json:"beforeId,omitempty"`

	// Progression
	Level       int    `json:"level,omitempty"`
	SkillSlot   int    `json:"skillSlot,omitempty"`
	LevelUpType string `json:"levelUpType,omitempty"`

	// Wards
	CreatorID int    `json:"creatorId,omitempty"`
	WardType  string `json:"wardType,omitempty"`

	// Kills
	KillerID                int         `json:"killerId,omitempty"`
	VictimID                int         `json:"victimId,omitempty"`
	AssistingParticipantIDs []int       `json:"assistingParticipantIds,omitempty"`
	Bounty                  int         `json:"bounty,omitempty"`
	ShutdownBounty          int         `json:"shutdownBounty,omitempty"`
	KillStreakLength        int         `json:"killStreakLength,omitempty"`
	KillType                string      `json:"killType,omitempty"`
	Position                *Position   `json:"position,omitempty"`
	VictimDamageDealt       []DamageHit `json:"victimDamageDealt,omitempty"`
	VictimDamageReceived    []DamageHit `json:"victimDamageReceived,omitempty"`

	// Objectives
	MonsterType    string `json:"monsterType,omitempty"`
	MonsterSubType string `json:"monsterSubType,omitempty"`
	KillerTeamID   int    `json:"killerTeamId,omitempty"`
	BuildingType   string `json:"buildingType,omitempty"`
	LaneType       string `json:"laneType,omitempty"`
	TowerType      string `json:"towerType,omitempty"`
	TeamID         int    `json:"teamId,omitempty"`

	// Feats of strength
	FeatType  *int `json:"featType,omitempty"`
	FeatValue *int `json:"featValue,omitempty"`
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DamageHit is one entry of victimDamageDealt / victimDamageReceived.
type DamageHit struct {
	Basic          bool   `json:"basic"`
	MagicDamage    int    `json:"magicDamage"`
	Name           string `json:"name"`
	ParticipantID  int    `json:"participantId"`
	PhysicalDamage int    `json:"physicalDamage"`
	SpellName      string `json:"spellName"`
	SpellSlot      int    `json:"spellSlot"`
	TrueDamage     int    `json:"trueDamage"`
	Type           string `json:"type"`
}

// LeagueEntryResponse represents a ranked league entry from /lol/league/v4/entries
type LeagueEntryResponse struct {
	LeagueID     string `json:"leagueId"`
	SummonerID   string `json:"summonerId"`
	PUUID        string `json:"puuid"`
	QueueType    string `json:"queueType"` // RANKED_SOLO_5x5, RANKED_FLEX_SR
	Tier         string `json:"tier"`      // IRON ... CHALLENGER
	Rank         string `json:"rank"`      // I, II, III, IV
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}
