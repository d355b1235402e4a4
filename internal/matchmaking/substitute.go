package matchmaking

import "openplay-app/internal/model"

// FindSubstitute picks the queued replacement for a player pulled off a court,
// preferring the removed player's skill level, then one level away.
func FindSubstitute(queue []model.Player, removed model.Player) (model.Player, bool) {
	if len(queue) == 0 {
		return model.Player{}, false
	}
	ranked := Rank(queue)
	if p, ok := closestSkill(ranked, removed.Skill); ok {
		return p, true
	}
	return ranked[0].Player, true
}
