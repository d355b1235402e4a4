package host

import (
	"context"
	"fmt"
	"strings"
	"time"

	"openplay-app/internal/model"
	"openplay-app/internal/session"

	"go.uber.org/zap"
)

type EventKind string

const (
	EventMatchFormed    EventKind = "match-formed"
	EventWinnerRecorded EventKind = "winner-recorded"
)

type Announcement struct {
	Kind      EventKind   `json:"kind"`
	SessionID string      `json:"sessionId"`
	Match     model.Match `json:"match"`
	Text      string      `json:"text"`
	At        time.Time   `json:"at"`
}

// Announcer is told about match events unless announcements are muted.
type Announcer interface {
	Announce(ctx context.Context, a Announcement)
}

// Listener sees every committed snapshot.
type Listener interface {
	SnapshotChanged(snapshot model.Snapshot)
}

type LogAnnouncer struct {
	Logger *zap.Logger
}

func (l LogAnnouncer) Announce(_ context.Context, a Announcement) {
	l.Logger.Info("announce",
		zap.String("kind", string(a.Kind)),
		zap.String("match_id", a.Match.ID),
		zap.Int("court", a.Match.Court),
		zap.String("text", a.Text),
	)
}

func announcements(prev, next model.Snapshot, at time.Time) []Announcement {
	seen := map[string]bool{}
	for _, m := range prev.Session.ActiveMatches {
		seen[m.ID] = true
	}
	for _, m := range prev.Session.Matches {
		seen[m.ID] = true
	}

	out := []Announcement{}
	for _, m := range next.Session.ActiveMatches {
		if seen[m.ID] {
			continue
		}
		out = append(out, Announcement{
			Kind:      EventMatchFormed,
			SessionID: next.Session.ID,
			Match:     m,
			Text:      fmt.Sprintf("Court %d: %s versus %s", m.Court, sideNames(next.Session, m.Team1), sideNames(next.Session, m.Team2)),
			At:        at,
		})
	}
	done := map[string]bool{}
	for _, m := range prev.Session.Matches {
		done[m.ID] = true
	}
	for _, m := range next.Session.Matches {
		if done[m.ID] {
			continue
		}
		winners := m.Team1
		if m.Winner == 2 {
			winners = m.Team2
		}
		out = append(out, Announcement{
			Kind:      EventWinnerRecorded,
			SessionID: next.Session.ID,
			Match:     m,
			Text:      fmt.Sprintf("Court %d: %s won", m.Court, sideNames(next.Session, winners)),
			At:        at,
		})
	}
	return out
}

func sideNames(s model.Session, ids []string) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if p, ok := session.FindPlayer(s, id); ok {
			names = append(names, p.DisplayName())
		}
	}
	if len(names) == 0 {
		return "unknown"
	}
	return strings.Join(names, " and ")
}
