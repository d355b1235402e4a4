package model

import (
	"strings"
	"time"
)

type SkillLevel int
type PlayerStatus string
type GameMode string

const (
	SkillUnset        SkillLevel = 0
	SkillBeginner     SkillLevel = 1
	SkillIntermediate SkillLevel = 2
	SkillPro          SkillLevel = 3

	StatusNotHere   PlayerStatus = "not-here"
	StatusCheckedIn PlayerStatus = "checked-in"
	StatusPlaying   PlayerStatus = "playing"
	StatusLeft      PlayerStatus = "left"

	ModeDoubles GameMode = "doubles"
	ModeSingles GameMode = "singles"
)

const (
	MinCourts = 1
	MaxCourts = 10
)

func (s SkillLevel) Valid() bool {
	return s >= SkillBeginner && s <= SkillPro
}

func (s SkillLevel) IsSet() bool {
	return s != SkillUnset
}

func (m GameMode) Valid() bool {
	return m == ModeDoubles || m == ModeSingles
}

// TeamSize is the number of players per side.
func (m GameMode) TeamSize() int {
	if m == ModeSingles {
		return 1
	}
	return 2
}

// RequiredPlayers is the number of players needed to start one match.
func (m GameMode) RequiredPlayers() int {
	return m.TeamSize() * 2
}

type Player struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Skill           SkillLevel   `json:"skill,omitempty"`
	Status          PlayerStatus `json:"status"`
	GamesPlayed     int          `json:"gamesPlayed"`
	Wins            int          `json:"wins"`
	Losses          int          `json:"losses"`
	LastPartner     string       `json:"lastPartner,omitempty"`
	LockedPartnerID string       `json:"lockedPartnerId,omitempty"`
	CourtsPlayed    []int        `json:"courtsPlayed"`
	CheckedInAt     *time.Time   `json:"checkedInAt,omitempty"`
}

func (p Player) DisplayName() string {
	return strings.TrimSpace(p.Name)
}

type Match struct {
	ID        string     `json:"id"`
	Court     int        `json:"court"`
	Team1     []string   `json:"team1"`
	Team2     []string   `json:"team2"`
	Winner    int        `json:"winner,omitempty"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	// PriorPartners holds each participant's LastPartner from before they
	// were seated here.
	PriorPartners map[string]string `json:"priorPartners,omitempty"`
}

// PlayerIDs returns both sides, team1 first.
func (m Match) PlayerIDs() []string {
	ids := make([]string, 0, len(m.Team1)+len(m.Team2))
	ids = append(ids, m.Team1...)
	return append(ids, m.Team2...)
}

func (m Match) Has(playerID string) bool {
	for _, id := range m.PlayerIDs() {
		if id == playerID {
			return true
		}
	}
	return false
}

type Session struct {
	ID            string     `json:"id"`
	Location      string     `json:"location"`
	Courts        int        `json:"courts"`
	GameMode      GameMode   `json:"gameMode"`
	Players       []Player   `json:"players"`
	Matches       []Match    `json:"matches"`
	ActiveMatches []Match    `json:"activeMatches"`
	StartTime     *time.Time `json:"startTime,omitempty"`
	EndTime       *time.Time `json:"endTime,omitempty"`
}

type UndoKind string

const UndoWinner UndoKind = "winner"

type UndoAction struct {
	Kind      UndoKind  `json:"kind"`
	MatchID   string    `json:"matchId"`
	Court     int       `json:"court"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is the document exchanged with persistence: the session plus its undo slot.
type Snapshot struct {
	Session Session     `json:"session"`
	Undo    *UndoAction `json:"undo,omitempty"`
}

type Location struct {
	Name     string    `json:"name"`
	Courts   int       `json:"courts"`
	LastUsed time.Time `json:"lastUsed"`
}

type PlayerRecord struct {
	Name           string     `json:"name"`
	Skill          SkillLevel `json:"skill,omitempty"`
	LifetimeWins   int        `json:"lifetimeWins"`
	LifetimeLosses int        `json:"lifetimeLosses"`
	LifetimeGames  int        `json:"lifetimeGames"`
	LastPlayed     *time.Time `json:"lastPlayed,omitempty"`
}

// PendingSync is an ended session whose cloud upload has not succeeded yet.
type PendingSync struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Summary   Summary   `json:"summary"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"lastError,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary is what gets shared once a session has ended.
type Summary struct {
	SessionID string          `json:"sessionId"`
	Location  string          `json:"location"`
	Courts    int             `json:"courts"`
	GameMode  GameMode        `json:"gameMode"`
	StartTime *time.Time      `json:"startTime,omitempty"`
	EndTime   *time.Time      `json:"endTime,omitempty"`
	Matches   int             `json:"matches"`
	Standings []StandingEntry `json:"standings"`
	Players   []Player        `json:"players"`
}

type StandingEntry struct {
	Rank        int    `json:"rank"`
	PlayerID    string `json:"playerId"`
	Name        string `json:"name"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	GamesPlayed int    `json:"gamesPlayed"`
	WinPercent  int    `json:"winPercent"`
}
