package session

import (
	"slices"

	"openplay-app/internal/matchmaking"
	"openplay-app/internal/model"
)

func filler(s *model.Session, env Env) matchmaking.CourtFiller {
	return matchmaking.CourtFiller{
		Mode:  s.GameMode,
		Teams: matchmaking.TeamFormer{Rand: env.Rand},
	}
}

func fillCourt(s *model.Session, court int, env Env) bool {
	if court < 1 || court > s.Courts || !slices.Contains(IdleCourts(*s), court) {
		return false
	}
	a, ok := filler(s, env).FillCourt(Queue(*s), court)
	if !ok {
		return false
	}
	seat(s, a, env)
	return true
}

// fillCourts seats every idle court it can and returns how many it filled.
func fillCourts(s *model.Session, env Env) int {
	assignments := filler(s, env).FillCourts(Queue(*s), IdleCourts(*s))
	for _, a := range assignments {
		seat(s, a, env)
	}
	return len(assignments)
}

// seat starts a match. A one-player side leaves LastPartner empty.
func seat(s *model.Session, a matchmaking.Assignment, env Env) {
	team1, team2 := a.Teams.IDs()
	prior := make(map[string]string, len(team1)+len(team2))
	for _, team := range [][]string{team1, team2} {
		for _, id := range team {
			i := playerIndex(*s, id)
			if i < 0 {
				continue
			}
			p := &s.Players[i]
			prior[id] = p.LastPartner
			p.Status = model.StatusPlaying
			p.CourtsPlayed = append(p.CourtsPlayed, a.Court)
			p.LastPartner, _ = teammate(team, id)
		}
	}
	s.ActiveMatches = append(s.ActiveMatches, model.Match{
		ID:            env.newID(),
		Court:         a.Court,
		Team1:         team1,
		Team2:         team2,
		StartTime:     env.Now,
		PriorPartners: prior,
	})
}

// teammate is the other id on a two-player side.
func teammate(team []string, id string) (string, bool) {
	if len(team) != 2 {
		return "", false
	}
	if team[0] == id {
		return team[1], true
	}
	if team[1] == id {
		return team[0], true
	}
	return "", false
}

// recordWinner completes the match and arms the undo slot. The freed court
// stays empty until a FillCourt or FillCourts.
func recordWinner(state *model.Snapshot, matchID string, winner int, env Env) bool {
	s := &state.Session
	mi := activeIndex(*s, matchID)
	if mi < 0 || (winner != 1 && winner != 2) {
		return false
	}
	match := s.ActiveMatches[mi]
	winners, losers := match.Team1, match.Team2
	if winner == 2 {
		winners, losers = losers, winners
	}
	for _, id := range winners {
		updatePlayer(s, id, func(p *model.Player) {
			p.GamesPlayed++
			p.Wins++
			requeue(p)
		})
	}
	for _, id := range losers {
		updatePlayer(s, id, func(p *model.Player) {
			p.GamesPlayed++
			p.Losses++
			requeue(p)
		})
	}
	match.Winner = winner
	match.EndTime = timePtr(env.Now)
	s.ActiveMatches = slices.Delete(s.ActiveMatches, mi, mi+1)
	s.Matches = append(s.Matches, match)
	state.Undo = &model.UndoAction{
		Kind:      model.UndoWinner,
		MatchID:   match.ID,
		Court:     match.Court,
		Timestamp: env.Now,
	}
	return true
}

// requeue sends a player coming off court back to the queue. Players who
// left in the meantime stay gone.
func requeue(p *model.Player) {
	if p.Status == model.StatusPlaying {
		p.Status = model.StatusCheckedIn
	}
}

func updatePlayer(s *model.Session, id string, fn func(p *model.Player)) {
	if i := playerIndex(*s, id); i >= 0 {
		fn(&s.Players[i])
	}
}

// removeFromCourt swaps in the best queued substitute. With nobody waiting the
// whole match is dropped with no result for anyone.
func removeFromCourt(s *model.Session, playerID, matchID string) bool {
	mi := activeIndex(*s, matchID)
	if mi < 0 || !s.ActiveMatches[mi].Has(playerID) {
		return false
	}
	match := &s.ActiveMatches[mi]
	removed, _ := FindPlayer(*s, playerID)
	removed.ID = playerID

	sub, ok := matchmaking.FindSubstitute(Queue(*s), removed)
	updatePlayer(s, playerID, func(p *model.Player) { p.Status = model.StatusLeft })
	if !ok {
		for _, id := range match.PlayerIDs() {
			if id != playerID {
				updatePlayer(s, id, requeue)
			}
		}
		s.ActiveMatches = slices.Delete(s.ActiveMatches, mi, mi+1)
		return true
	}

	team := match.Team1
	if !slices.Contains(team, playerID) {
		team = match.Team2
	}
	team[slices.Index(team, playerID)] = sub.ID
	mate, paired := teammate(team, sub.ID)
	updatePlayer(s, sub.ID, func(p *model.Player) {
		if match.PriorPartners == nil {
			match.PriorPartners = map[string]string{}
		}
		match.PriorPartners[sub.ID] = p.LastPartner
		p.Status = model.StatusPlaying
		p.CourtsPlayed = append(p.CourtsPlayed, match.Court)
		p.LastPartner = mate
	})
	if paired {
		updatePlayer(s, mate, func(p *model.Player) { p.LastPartner = sub.ID })
	}
	return true
}

// undoWinner reverses the last recorded result and puts the match back on
// its court, discarding any match started there since.
func undoWinner(state *model.Snapshot, matchID string) bool {
	undo := state.Undo
	if undo == nil || undo.Kind != model.UndoWinner || undo.MatchID != matchID {
		return false
	}
	s := &state.Session
	ci := slices.IndexFunc(s.Matches, func(m model.Match) bool { return m.ID == matchID })
	if ci < 0 {
		return false
	}
	original := s.Matches[ci]

	replacement := slices.IndexFunc(s.ActiveMatches, func(m model.Match) bool { return m.Court == original.Court })
	for i, m := range s.ActiveMatches {
		if i == replacement {
			continue
		}
		for _, id := range original.PlayerIDs() {
			if m.Has(id) {
				return false
			}
		}
	}

	if replacement >= 0 {
		discarded := s.ActiveMatches[replacement]
		for _, id := range discarded.PlayerIDs() {
			updatePlayer(s, id, func(p *model.Player) {
				p.Status = model.StatusCheckedIn
				if n := len(p.CourtsPlayed); n > 0 && p.CourtsPlayed[n-1] == original.Court {
					p.CourtsPlayed = p.CourtsPlayed[:n-1]
				}
				if prior, ok := discarded.PriorPartners[id]; ok {
					p.LastPartner = prior
				}
			})
		}
		s.ActiveMatches = slices.Delete(s.ActiveMatches, replacement, replacement+1)
	}

	winners, losers := original.Team1, original.Team2
	if original.Winner == 2 {
		winners, losers = losers, winners
	}
	for _, id := range winners {
		updatePlayer(s, id, func(p *model.Player) {
			p.GamesPlayed = max(p.GamesPlayed-1, 0)
			p.Wins = max(p.Wins-1, 0)
			p.Status = model.StatusPlaying
			p.LastPartner, _ = teammate(winners, id)
		})
	}
	for _, id := range losers {
		updatePlayer(s, id, func(p *model.Player) {
			p.GamesPlayed = max(p.GamesPlayed-1, 0)
			p.Losses = max(p.Losses-1, 0)
			p.Status = model.StatusPlaying
			p.LastPartner, _ = teammate(losers, id)
		})
	}

	original.Winner = 0
	original.EndTime = nil
	s.Matches = slices.Delete(s.Matches, ci, ci+1)
	s.ActiveMatches = append(s.ActiveMatches, original)
	state.Undo = nil
	return true
}
