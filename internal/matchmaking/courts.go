package matchmaking

import (
	"slices"

	"openplay-app/internal/model"

	"github.com/samber/lo"
)

// Assignment is a match formed for one court.
type Assignment struct {
	Court int
	Teams Teams
}

type CourtFiller struct {
	Mode  model.GameMode
	Teams TeamFormer
}

// FillCourt seats the queue's next group on court.
func (f CourtFiller) FillCourt(queue []model.Player, court int) (Assignment, bool) {
	group, ok := SelectNextPlayers(queue, f.Mode)
	if !ok {
		return Assignment{}, false
	}
	teams, ok := f.Teams.Form(group, f.Mode)
	if !ok {
		return Assignment{}, false
	}
	return Assignment{Court: court, Teams: teams}, true
}

// FillCourts seats idle courts in the given order, removing seated players
// from the queue as it goes, and stops at the first court it cannot fill.
func (f CourtFiller) FillCourts(queue []model.Player, idle []int) []Assignment {
	remaining := slices.Clone(queue)
	assignments := []Assignment{}
	for _, court := range idle {
		a, ok := f.FillCourt(remaining, court)
		if !ok {
			break
		}
		seated := map[string]bool{}
		for _, p := range append(slices.Clone(a.Teams.Team1), a.Teams.Team2...) {
			seated[p.ID] = true
		}
		remaining = lo.Reject(remaining, func(p model.Player, _ int) bool { return seated[p.ID] })
		assignments = append(assignments, a)
	}
	return assignments
}
