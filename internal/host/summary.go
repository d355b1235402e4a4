package host

import (
	"openplay-app/internal/matchmaking"
	"openplay-app/internal/model"
	"openplay-app/internal/session"
)

// BuildSummary is the shareable view of an ended session.
func BuildSummary(s model.Session) model.Summary {
	players := session.Clone(model.Snapshot{Session: s}).Session.Players
	return model.Summary{
		SessionID: s.ID,
		Location:  s.Location,
		Courts:    s.Courts,
		GameMode:  s.GameMode,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Matches:   len(s.Matches),
		Standings: matchmaking.Standings(s.Players),
		Players:   players,
	}
}
