package web

import (
	"openplay-app/internal/matchmaking"
	"openplay-app/internal/model"
	"openplay-app/internal/session"
)

type SnapshotView struct {
	Session         model.Session     `json:"session"`
	Undo            *model.UndoAction `json:"undo,omitempty"`
	Phase           session.Phase     `json:"phase"`
	Queue           []model.Player    `json:"queue"`
	IdleCourts      []int             `json:"idleCourts"`
	RequiredPlayers int               `json:"requiredPlayers"`
}

func snapshotView(snapshot model.Snapshot) SnapshotView {
	s := snapshot.Session
	return SnapshotView{
		Session:         s,
		Undo:            snapshot.Undo,
		Phase:           session.PhaseOf(s),
		Queue:           session.Queue(s),
		IdleCourts:      session.IdleCourts(s),
		RequiredPlayers: s.GameMode.RequiredPlayers(),
	}
}

type QueueEntry struct {
	Position int          `json:"position"`
	Priority int          `json:"priority"`
	Player   model.Player `json:"player"`
}

func queueView(s model.Session) []QueueEntry {
	queue := session.Queue(s)
	entries := make([]QueueEntry, 0, len(queue))
	for i, p := range queue {
		entries = append(entries, QueueEntry{
			Position: i + 1,
			Priority: matchmaking.Priority(p, i),
			Player:   p,
		})
	}
	return entries
}

type AlertView struct {
	PlayerID    string `json:"playerId"`
	Name        string `json:"name"`
	GamesPlayed int    `json:"gamesPlayed"`
}

type MuteView struct {
	Muted bool `json:"muted"`
}

type ErrorView struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
