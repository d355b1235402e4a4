package session

import (
	"openplay-app/internal/model"
)

// Reduce applies cmd to state and returns the next snapshot. Commands whose
// preconditions do not hold leave the state untouched and report false.
func Reduce(state model.Snapshot, cmd Command, env Env) (model.Snapshot, bool) {
	next := Clone(state)
	s := &next.Session
	phase := PhaseOf(*s)
	open := phase != PhaseEnded

	var applied bool
	switch c := cmd.(type) {
	case AddPlayer:
		applied = open && addPlayer(s, c.Name, model.SkillUnset, env)
	case AddPlayerWithSkill:
		applied = open && addPlayer(s, c.Name, c.Skill, env)
	case RemovePlayer:
		applied = open && removePlayer(s, c.PlayerID)
	case SetPlayerSkill:
		applied = open && setSkill(s, c.PlayerID, c.Skill)
	case SetCourts:
		applied = open && setCourts(s, c.Courts)
	case SetGameMode:
		applied = open && setGameMode(s, c.Mode)
	case SetLocation:
		applied = open && setLocation(s, c.Location)
	case CheckInPlayer:
		applied = open && checkIn(s, c.PlayerID, env)
	case CheckOutPlayer:
		applied = open && checkOut(s, c.PlayerID)
	case StartSession:
		applied = phase == PhaseSetup && startSession(s, env)
	case EndSession:
		applied = phase == PhaseActive && endSession(&next, env)
	case FillCourt:
		applied = phase == PhaseActive && fillCourt(s, c.Court, env)
	case FillCourts:
		applied = phase == PhaseActive && fillCourts(s, env) > 0
	case RecordWinner:
		applied = phase == PhaseActive && recordWinner(&next, c.MatchID, c.Winner, env)
	case RemoveFromCourt:
		applied = phase == PhaseActive && removeFromCourt(s, c.PlayerID, c.MatchID)
	case UndoWinner:
		applied = phase == PhaseActive && undoWinner(&next, c.MatchID)
	case ClearUndo:
		applied = next.Undo != nil
		next.Undo = nil
	case LockPartners:
		applied = open && lockPartners(s, c.PlayerA, c.PlayerB)
	case UnlockPartner:
		applied = open && unlockPartner(s, c.PlayerID)
	case NewSession:
		next = newSession(state.Session, env)
		applied = true
	}
	if !applied {
		return state, false
	}
	return next, true
}

func startSession(s *model.Session, env Env) bool {
	if normalizeName(s.Location) == "" {
		return false
	}
	present := 0
	for _, p := range s.Players {
		if p.Status == model.StatusCheckedIn || p.Status == model.StatusPlaying {
			present++
		}
	}
	if present < s.GameMode.RequiredPlayers() {
		return false
	}
	s.StartTime = timePtr(env.Now)
	fillCourts(s, env)
	return true
}

func endSession(state *model.Snapshot, env Env) bool {
	state.Session.EndTime = timePtr(env.Now)
	state.Undo = nil
	return true
}

// newSession keeps the venue settings and drops everything else.
func newSession(prev model.Session, env Env) model.Snapshot {
	s := New(env.newID())
	s.Location = prev.Location
	if prev.Courts > 0 {
		s.Courts = clampCourts(prev.Courts)
	}
	if prev.GameMode.Valid() {
		s.GameMode = prev.GameMode
	}
	return model.Snapshot{Session: s}
}
