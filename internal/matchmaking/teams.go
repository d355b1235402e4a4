package matchmaking

import (
	"cmp"
	"math/rand"
	"slices"

	"openplay-app/internal/model"

	"github.com/samber/lo"
)

type Teams struct {
	Team1 []model.Player
	Team2 []model.Player
}

func (t Teams) IDs() ([]string, []string) {
	id := func(p model.Player, _ int) string { return p.ID }
	return lo.Map(t.Team1, id), lo.Map(t.Team2, id)
}

// TeamFormer splits a selected group into two sides. A nil Rand falls back
// to the math/rand package source.
type TeamFormer struct {
	Rand                *rand.Rand
	AllowRecentPartners bool
}

// Form returns ok=false when the group size does not fit the mode.
func (f TeamFormer) Form(group []model.Player, mode model.GameMode) (Teams, bool) {
	if len(group) != mode.RequiredPlayers() {
		return Teams{}, false
	}
	if mode == model.ModeSingles {
		return Teams{Team1: []model.Player{group[0]}, Team2: []model.Player{group[1]}}, true
	}

	pairs, singles := splitLocked(group)
	switch len(pairs) {
	case 2:
		if f.coinFlip() {
			return Teams{Team1: pairs[0], Team2: pairs[1]}, true
		}
		return Teams{Team1: pairs[1], Team2: pairs[0]}, true
	case 1:
		if f.coinFlip() {
			return Teams{Team1: pairs[0], Team2: singles}, true
		}
		return Teams{Team1: singles, Team2: pairs[0]}, true
	}
	return f.balance(group), true
}

func (f TeamFormer) coinFlip() bool {
	if f.Rand == nil {
		return rand.Intn(2) == 0
	}
	return f.Rand.Intn(2) == 0
}

func (f TeamFormer) shuffle(ps []model.Player) {
	swap := func(i, j int) { ps[i], ps[j] = ps[j], ps[i] }
	if f.Rand == nil {
		rand.Shuffle(len(ps), swap)
		return
	}
	f.Rand.Shuffle(len(ps), swap)
}

// splitLocked separates mutually locked pairs inside group from everyone else.
func splitLocked(group []model.Player) ([][]model.Player, []model.Player) {
	byID := lo.KeyBy(group, func(p model.Player) string { return p.ID })
	used := map[string]bool{}
	pairs := [][]model.Player{}
	for _, p := range group {
		if used[p.ID] || p.LockedPartnerID == "" {
			continue
		}
		partner, ok := byID[p.LockedPartnerID]
		if !ok || partner.LockedPartnerID != p.ID {
			continue
		}
		used[p.ID] = true
		used[partner.ID] = true
		pairs = append(pairs, []model.Player{p, partner})
	}
	singles := lo.Filter(group, func(p model.Player, _ int) bool { return !used[p.ID] })
	return pairs, singles
}

// balance pairs strongest with weakest when any skill is known, otherwise at random.
func (f TeamFormer) balance(group []model.Player) Teams {
	ps := slices.Clone(group)
	var primary, alternate Teams
	if lo.SomeBy(ps, func(p model.Player) bool { return p.Skill.IsSet() }) {
		slices.SortStableFunc(ps, func(a, b model.Player) int {
			return cmp.Compare(balanceSkill(b), balanceSkill(a))
		})
		primary = Teams{Team1: []model.Player{ps[0], ps[3]}, Team2: []model.Player{ps[1], ps[2]}}
	} else {
		f.shuffle(ps)
		primary = Teams{Team1: []model.Player{ps[0], ps[1]}, Team2: []model.Player{ps[2], ps[3]}}
	}
	alternate = Teams{Team1: []model.Player{ps[0], ps[2]}, Team2: []model.Player{ps[1], ps[3]}}

	if f.AllowRecentPartners {
		return primary
	}
	if c := recentCollisions(primary); c > 0 && recentCollisions(alternate) < c {
		return alternate
	}
	return primary
}

// balanceSkill treats an unknown skill as intermediate.
func balanceSkill(p model.Player) int {
	if !p.Skill.IsSet() {
		return int(model.SkillIntermediate)
	}
	return int(p.Skill)
}

func isRecentPartner(a, b model.Player) bool {
	return a.LastPartner == b.ID && b.LastPartner == a.ID
}

func recentCollisions(t Teams) int {
	n := 0
	for _, team := range [][]model.Player{t.Team1, t.Team2} {
		if len(team) == 2 && isRecentPartner(team[0], team[1]) {
			n++
		}
	}
	return n
}
