// Package session holds the open-play state machine. Reduce is the only way
// a Snapshot changes; it never mutates its input and never performs I/O.
package session

import (
	"maps"
	"math/rand"
	"slices"
	"strings"
	"time"

	"openplay-app/internal/model"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const DefaultCourts = 2

type Phase string

const (
	PhaseSetup  Phase = "setup"
	PhaseActive Phase = "active"
	PhaseEnded  Phase = "ended"
)

// Env carries everything Reduce would otherwise read from the outside world.
type Env struct {
	Now   time.Time
	Rand  *rand.Rand
	NewID func() string
}

func (e Env) newID() string {
	if e.NewID == nil {
		return uuid.NewString()
	}
	return e.NewID()
}

// New returns an empty session in the Setup phase.
func New(id string) model.Session {
	return model.Session{
		ID:            id,
		Courts:        DefaultCourts,
		GameMode:      model.ModeDoubles,
		Players:       []model.Player{},
		Matches:       []model.Match{},
		ActiveMatches: []model.Match{},
	}
}

func PhaseOf(s model.Session) Phase {
	switch {
	case s.EndTime != nil:
		return PhaseEnded
	case s.StartTime != nil:
		return PhaseActive
	}
	return PhaseSetup
}

// Queue is the checked-in players in roster order.
func Queue(s model.Session) []model.Player {
	return lo.Filter(s.Players, func(p model.Player, _ int) bool { return p.Status == model.StatusCheckedIn })
}

// IdleCourts lists court numbers without an active match, ascending.
func IdleCourts(s model.Session) []int {
	busy := map[int]bool{}
	for _, m := range s.ActiveMatches {
		busy[m.Court] = true
	}
	idle := []int{}
	for court := 1; court <= s.Courts; court++ {
		if !busy[court] {
			idle = append(idle, court)
		}
	}
	return idle
}

func FindPlayer(s model.Session, id string) (model.Player, bool) {
	i := playerIndex(s, id)
	if i < 0 {
		return model.Player{}, false
	}
	return s.Players[i], true
}

func FindActiveMatch(s model.Session, id string) (model.Match, bool) {
	i := activeIndex(s, id)
	if i < 0 {
		return model.Match{}, false
	}
	return s.ActiveMatches[i], true
}

func playerIndex(s model.Session, id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.Players, func(p model.Player) bool { return p.ID == id })
}

func activeIndex(s model.Session, id string) int {
	return slices.IndexFunc(s.ActiveMatches, func(m model.Match) bool { return m.ID == id })
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func clampCourts(n int) int {
	return min(max(n, model.MinCourts), model.MaxCourts)
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// Clone deep-copies a snapshot so the copy can be edited freely.
func Clone(state model.Snapshot) model.Snapshot {
	next := state
	s := &next.Session
	s.Players = make([]model.Player, len(state.Session.Players))
	for i, p := range state.Session.Players {
		p.CourtsPlayed = slices.Clone(p.CourtsPlayed)
		s.Players[i] = p
	}
	s.Matches = cloneMatches(state.Session.Matches)
	s.ActiveMatches = cloneMatches(state.Session.ActiveMatches)
	if state.Undo != nil {
		undo := *state.Undo
		next.Undo = &undo
	}
	return next
}

func cloneMatches(matches []model.Match) []model.Match {
	out := make([]model.Match, len(matches))
	for i, m := range matches {
		m.Team1 = slices.Clone(m.Team1)
		m.Team2 = slices.Clone(m.Team2)
		m.PriorPartners = maps.Clone(m.PriorPartners)
		out[i] = m
	}
	return out
}
