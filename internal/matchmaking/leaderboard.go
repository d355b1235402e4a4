package matchmaking

import (
	"cmp"
	"math"
	"slices"

	"openplay-app/internal/model"

	"github.com/samber/lo"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// StarvationGap is how many games below the active average a player may fall before being flagged.
const StarvationGap = 3

// WinPercentage is wins over games played, rounded to a whole percent.
func WinPercentage(p model.Player) int {
	if p.GamesPlayed == 0 {
		return 0
	}
	return int(math.Round(float64(p.Wins) / float64(p.GamesPlayed) * 100))
}

// CalculateLeaderboard ranks everyone who played at least once: wins, then
// win rate, then fewer games, then name.
func CalculateLeaderboard(players []model.Player) []model.Player {
	ranked := lo.Filter(players, func(p model.Player, _ int) bool { return p.GamesPlayed > 0 })
	names := collate.New(language.Und, collate.IgnoreCase)
	slices.SortStableFunc(ranked, func(a, b model.Player) int {
		if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
			return c
		}
		// b.Wins/b.Games vs a.Wins/a.Games without floats.
		if c := cmp.Compare(b.Wins*a.GamesPlayed, a.Wins*b.GamesPlayed); c != 0 {
			return c
		}
		if c := cmp.Compare(a.GamesPlayed, b.GamesPlayed); c != 0 {
			return c
		}
		return names.CompareString(a.Name, b.Name)
	})
	return ranked
}

func Standings(players []model.Player) []model.StandingEntry {
	ranked := CalculateLeaderboard(players)
	entries := make([]model.StandingEntry, 0, len(ranked))
	for i, p := range ranked {
		entries = append(entries, model.StandingEntry{
			Rank:        i + 1,
			PlayerID:    p.ID,
			Name:        p.Name,
			Wins:        p.Wins,
			Losses:      p.Losses,
			GamesPlayed: p.GamesPlayed,
			WinPercent:  WinPercentage(p),
		})
	}
	return entries
}

// StarvationAlerts lists present players whose game count trails the present
// average by StarvationGap or more. Informational only.
func StarvationAlerts(players []model.Player) []model.Player {
	present := lo.Filter(players, func(p model.Player, _ int) bool {
		return p.Status == model.StatusCheckedIn || p.Status == model.StatusPlaying
	})
	if len(present) == 0 {
		return nil
	}
	total := lo.SumBy(present, func(p model.Player) int { return p.GamesPlayed })
	avg := float64(total) / float64(len(present))
	return lo.Filter(present, func(p model.Player, _ int) bool {
		return avg-float64(p.GamesPlayed) >= StarvationGap
	})
}
