package matchmaking

import (
	"cmp"
	"math"
	"slices"

	"openplay-app/internal/model"

	"github.com/samber/lo"
)

// SelectNextPlayers picks the group for the next court: 4 players in doubles,
// 2 in singles. ok is false when the queue is too short.
func SelectNextPlayers(queue []model.Player, mode model.GameMode) ([]model.Player, bool) {
	if len(queue) < mode.RequiredPlayers() {
		return nil, false
	}
	if mode == model.ModeSingles {
		return selectSingles(queue), true
	}
	return selectDoubles(queue), true
}

func selectSingles(queue []model.Player) []model.Player {
	ranked := Rank(queue)
	anchor := ranked[0].Player
	if opponent, ok := closestSkill(ranked[1:], anchor.Skill); ok {
		return []model.Player{anchor, opponent}
	}
	return players(ranked[:2])
}

type lockedPair struct {
	a, b Ranked
}

func (lp lockedPair) priority() float64 {
	return float64(lp.a.Priority+lp.b.Priority) / 2
}

func (lp lockedPair) members() []model.Player {
	return []model.Player{lp.a.Player, lp.b.Player}
}

// avgSkill averages the members that have a skill set.
func (lp lockedPair) avgSkill() (float64, bool) {
	total, n := 0, 0
	for _, p := range lp.members() {
		if p.Skill.IsSet() {
			total += int(p.Skill)
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return float64(total) / float64(n), true
}

func (lp lockedPair) playedTogetherLast() bool {
	return isRecentPartner(lp.a.Player, lp.b.Player)
}

// findLockedPairs returns the mutually locked pairs fully present in ranked,
// sorted by the average priority of their members.
func findLockedPairs(ranked []Ranked) []lockedPair {
	byID := lo.SliceToMap(ranked, func(r Ranked) (string, Ranked) { return r.Player.ID, r })
	seen := map[string]bool{}
	pairs := []lockedPair{}
	for _, r := range ranked {
		partnerID := r.Player.LockedPartnerID
		if partnerID == "" || seen[r.Player.ID] {
			continue
		}
		partner, ok := byID[partnerID]
		if !ok || partner.Player.LockedPartnerID != r.Player.ID {
			continue
		}
		seen[r.Player.ID] = true
		seen[partnerID] = true
		pairs = append(pairs, lockedPair{a: r, b: partner})
	}
	slices.SortStableFunc(pairs, func(x, y lockedPair) int {
		return cmp.Compare(x.priority(), y.priority())
	})
	return pairs
}

func selectDoubles(queue []model.Player) []model.Player {
	ranked := Rank(queue)
	pairs := findLockedPairs(ranked)
	free := lo.Filter(ranked, func(r Ranked, _ int) bool { return r.Player.LockedPartnerID == "" })

	switch {
	case len(pairs) >= 2:
		first, second := pairs[0], pairs[1]
		if !justPlayed(first, second) && !skillMismatch(first, second) {
			return append(first.members(), second.members()...)
		}
		if len(free) >= 2 {
			return append(first.members(), players(free[:2])...)
		}
		if len(pairs) >= 3 {
			return append(first.members(), closestPair(first, pairs[2:]).members()...)
		}
		return append(first.members(), second.members()...)
	case len(pairs) == 1 && len(free) >= 2:
		return append(pairs[0].members(), players(free[:2])...)
	}
	// The fallback ignores locks and may split a pair.
	return players(ranked[:model.ModeDoubles.RequiredPlayers()])
}

// justPlayed reports whether both pairs came straight off the same round together.
func justPlayed(x, y lockedPair) bool {
	if !x.playedTogetherLast() || !y.playedTogetherLast() {
		return false
	}
	games := x.a.Player.GamesPlayed
	if games == 0 {
		return false
	}
	return x.b.Player.GamesPlayed == games && y.a.Player.GamesPlayed == games && y.b.Player.GamesPlayed == games
}

func skillMismatch(x, y lockedPair) bool {
	xs, okX := x.avgSkill()
	ys, okY := y.avgSkill()
	if !okX || !okY {
		return false
	}
	return math.Abs(xs-ys) > 1
}

// closestPair picks the candidate with the smallest skill gap to anchor.
// Candidates without skill data rank after those with it; ties keep priority order.
func closestPair(anchor lockedPair, candidates []lockedPair) lockedPair {
	target, ok := anchor.avgSkill()
	if !ok {
		return candidates[0]
	}
	best := candidates[0]
	bestGap := math.Inf(1)
	for _, c := range candidates {
		s, ok := c.avgSkill()
		if !ok {
			continue
		}
		if gap := math.Abs(s - target); gap < bestGap {
			best, bestGap = c, gap
		}
	}
	return best
}
