package session

import "openplay-app/internal/model"

// Command is the closed set of inputs Reduce understands.
type Command interface {
	Kind() string
	command()
}

type AddPlayer struct {
	Name string
}

type AddPlayerWithSkill struct {
	Name  string
	Skill model.SkillLevel
}

// RemovePlayer deletes the player from the roster, even mid-match.
type RemovePlayer struct {
	PlayerID string
}

type SetPlayerSkill struct {
	PlayerID string
	Skill    model.SkillLevel
}

// SetCourts is clamped to model.MinCourts..model.MaxCourts.
type SetCourts struct {
	Courts int
}

// SetGameMode does not reshape matches already on court.
type SetGameMode struct {
	Mode model.GameMode
}

type SetLocation struct {
	Location string
}

type CheckInPlayer struct {
	PlayerID string
}

type CheckOutPlayer struct {
	PlayerID string
}

type StartSession struct{}

type EndSession struct{}

type FillCourt struct {
	Court int
}

type FillCourts struct{}

// RecordWinner finishes a match. Winner is 1 or 2.
type RecordWinner struct {
	MatchID string
	Winner  int
}

// RemoveFromCourt pulls a player out of a running match.
type RemoveFromCourt struct {
	PlayerID string
	MatchID  string
}

type UndoWinner struct {
	MatchID string
}

type ClearUndo struct{}

type LockPartners struct {
	PlayerA string
	PlayerB string
}

type UnlockPartner struct {
	PlayerID string
}

type NewSession struct{}

func (AddPlayer) Kind() string          { return "ADD_PLAYER" }
func (AddPlayerWithSkill) Kind() string { return "ADD_PLAYER_WITH_SKILL" }
func (RemovePlayer) Kind() string       { return "REMOVE_PLAYER" }
func (SetPlayerSkill) Kind() string     { return "SET_PLAYER_SKILL" }
func (SetCourts) Kind() string          { return "SET_COURTS" }
func (SetGameMode) Kind() string        { return "SET_GAME_MODE" }
func (SetLocation) Kind() string        { return "SET_LOCATION" }
func (CheckInPlayer) Kind() string      { return "CHECK_IN_PLAYER" }
func (CheckOutPlayer) Kind() string     { return "CHECK_OUT_PLAYER" }
func (StartSession) Kind() string       { return "START_SESSION" }
func (EndSession) Kind() string         { return "END_SESSION" }
func (FillCourt) Kind() string          { return "FILL_COURT" }
func (FillCourts) Kind() string         { return "FILL_COURTS" }
func (RecordWinner) Kind() string       { return "RECORD_WINNER" }
func (RemoveFromCourt) Kind() string    { return "REMOVE_FROM_COURT" }
func (UndoWinner) Kind() string         { return "UNDO_WINNER" }
func (ClearUndo) Kind() string          { return "CLEAR_UNDO" }
func (LockPartners) Kind() string       { return "LOCK_PARTNERS" }
func (UnlockPartner) Kind() string      { return "UNLOCK_PARTNER" }
func (NewSession) Kind() string         { return "NEW_SESSION" }

func (AddPlayer) command()          {}
func (AddPlayerWithSkill) command() {}
func (RemovePlayer) command()       {}
func (SetPlayerSkill) command()     {}
func (SetCourts) command()          {}
func (SetGameMode) command()        {}
func (SetLocation) command()        {}
func (CheckInPlayer) command()      {}
func (CheckOutPlayer) command()     {}
func (StartSession) command()       {}
func (EndSession) command()         {}
func (FillCourt) command()          {}
func (FillCourts) command()         {}
func (RecordWinner) command()       {}
func (RemoveFromCourt) command()    {}
func (UndoWinner) command()         {}
func (ClearUndo) command()          {}
func (LockPartners) command()       {}
func (UnlockPartner) command()      {}
func (NewSession) command()         {}
