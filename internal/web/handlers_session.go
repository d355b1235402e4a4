package web

import (
	"net/http"

	"openplay-app/internal/model"
	"openplay-app/internal/session"
)

type courtsRequest struct {
	Courts *int `json:"courts" validate:"required"`
}

func (s *Server) handleCourtsUpdate(w http.ResponseWriter, r *http.Request) {
	var req courtsRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.dispatch(w, session.SetCourts{Courts: *req.Courts})
}

type modeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=doubles singles"`
}

func (s *Server) handleModeUpdate(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.dispatch(w, session.SetGameMode{Mode: model.GameMode(req.Mode)})
}

type locationRequest struct {
	Location string `json:"location" validate:"required,max=128"`
}

func (s *Server) handleLocationUpdate(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.dispatch(w, session.SetLocation{Location: req.Location})
}

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, session.StartSession{})
}

func (s *Server) handleSessionEnd(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, session.EndSession{})
}

func (s *Server) handleSessionNew(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, session.NewSession{})
}

func (s *Server) handleCourtsFill(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, session.FillCourts{})
}

func (s *Server) handleCourtFill(w http.ResponseWriter, r *http.Request) {
	court, ok := parseCourt(pathParam(r, "court"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid court")
		return
	}
	s.dispatch(w, session.FillCourt{Court: court})
}

type winnerRequest struct {
	Winner int `json:"winner" validate:"required,oneof=1 2"`
}

func (s *Server) handleWinnerRecord(w http.ResponseWriter, r *http.Request) {
	var req winnerRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.dispatch(w, session.RecordWinner{MatchID: pathParam(r, "matchID"), Winner: req.Winner})
}

func (s *Server) handleWinnerUndo(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, session.UndoWinner{MatchID: pathParam(r, "matchID")})
}

func (s *Server) handleCourtRemove(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, session.RemoveFromCourt{PlayerID: pathParam(r, "playerID"), MatchID: pathParam(r, "matchID")})
}

func (s *Server) handleUndoClear(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, session.ClearUndo{})
}
