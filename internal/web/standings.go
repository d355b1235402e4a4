package web

import (
	"openplay-app/internal/matchmaking"
	"openplay-app/internal/model"
)

// BuildStandings ranks everyone who has played in the session.
func BuildStandings(s model.Session) []model.StandingEntry {
	standings := matchmaking.Standings(s.Players)
	if standings == nil {
		return []model.StandingEntry{}
	}
	return standings
}

func buildAlerts(s model.Session) []AlertView {
	alerts := []AlertView{}
	for _, p := range matchmaking.StarvationAlerts(s.Players) {
		alerts = append(alerts, AlertView{PlayerID: p.ID, Name: p.DisplayName(), GamesPlayed: p.GamesPlayed})
	}
	return alerts
}
