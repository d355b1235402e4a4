package web

import (
	"net/http"

	"openplay-app/internal/model"
	"openplay-app/internal/session"
)

type addPlayerRequest struct {
	Name  string `json:"name" validate:"required,max=64"`
	Skill int    `json:"skill" validate:"omitempty,min=1,max=3"`
}

func (s *Server) handlePlayerAdd(w http.ResponseWriter, r *http.Request) {
	var req addPlayerRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Skill == 0 {
		s.dispatch(w, session.AddPlayer{Name: req.Name})
		return
	}
	s.dispatch(w, session.AddPlayerWithSkill{Name: req.Name, Skill: model.SkillLevel(req.Skill)})
}

func (s *Server) handlePlayerRemove(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, session.RemovePlayer{PlayerID: pathParam(r, "playerID")})
}

type skillRequest struct {
	Skill *int `json:"skill" validate:"required,min=0,max=3"`
}

func (s *Server) handlePlayerSkill(w http.ResponseWriter, r *http.Request) {
	var req skillRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.dispatch(w, session.SetPlayerSkill{PlayerID: pathParam(r, "playerID"), Skill: model.SkillLevel(*req.Skill)})
}

func (s *Server) handlePlayerCheckIn(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, session.CheckInPlayer{PlayerID: pathParam(r, "playerID")})
}

func (s *Server) handlePlayerCheckOut(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, session.CheckOutPlayer{PlayerID: pathParam(r, "playerID")})
}

type partnerRequest struct {
	PartnerID string `json:"partnerId" validate:"required"`
}

func (s *Server) handlePartnerLock(w http.ResponseWriter, r *http.Request) {
	var req partnerRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.dispatch(w, session.LockPartners{PlayerA: pathParam(r, "playerID"), PlayerB: req.PartnerID})
}

func (s *Server) handlePartnerUnlock(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, session.UnlockPartner{PlayerID: pathParam(r, "playerID")})
}
