// Package matchmaking decides who plays next and on which side.
//
// Everything here is pure: functions take the current queue and return a
// result, or ok=false when no result is possible. Nothing panics on short
// or odd input.
package matchmaking

import (
	"cmp"
	"slices"

	"openplay-app/internal/model"

	"github.com/samber/lo"
)

// gamesWeight makes games played dominate the queue position.
const gamesWeight = 1000

type Ranked struct {
	Player   model.Player
	Priority int
}

// Priority scores how overdue a queued player is. Lower plays sooner.
func Priority(p model.Player, queueIndex int) int {
	return p.GamesPlayed*gamesWeight + queueIndex
}

// Rank orders the queue by priority, lowest first.
func Rank(queue []model.Player) []Ranked {
	ranked := make([]Ranked, len(queue))
	for i, p := range queue {
		ranked[i] = Ranked{Player: p, Priority: Priority(p, i)}
	}
	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	return ranked
}

func players(ranked []Ranked) []model.Player {
	return lo.Map(ranked, func(r Ranked, _ int) model.Player { return r.Player })
}

func skillGap(a, b model.SkillLevel) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// firstWithin returns the first ranked player whose skill is set and at most gap levels from skill.
func firstWithin(ranked []Ranked, skill model.SkillLevel, gap int) (model.Player, bool) {
	for _, r := range ranked {
		if r.Player.Skill.IsSet() && skillGap(r.Player.Skill, skill) <= gap {
			return r.Player, true
		}
	}
	return model.Player{}, false
}

// closestSkill prefers an exact skill match, then one level away.
func closestSkill(ranked []Ranked, skill model.SkillLevel) (model.Player, bool) {
	if !skill.IsSet() {
		return model.Player{}, false
	}
	if p, ok := firstWithin(ranked, skill, 0); ok {
		return p, true
	}
	return firstWithin(ranked, skill, 1)
}
