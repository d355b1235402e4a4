package web

import (
	"net/http"

	"openplay-app/internal/session"

	"go.uber.org/zap"
)

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, snapshotView(s.host.Snapshot()))
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, queueView(s.host.Snapshot().Session))
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, BuildStandings(s.host.Snapshot().Session))
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildAlerts(s.host.Snapshot().Session))
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListLocations())
}

func (s *Server) handleDirectory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListPlayerRecords())
}

func (s *Server) handleDirectoryRecord(w http.ResponseWriter, r *http.Request) {
	record, ok := s.store.GetPlayerRecord(pathParam(r, "name"))
	if !ok {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleMute(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MuteView{Muted: s.store.Muted()})
}

type muteRequest struct {
	Muted *bool `json:"muted" validate:"required"`
}

func (s *Server) handleMuteUpdate(w http.ResponseWriter, r *http.Request) {
	var req muteRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.SetMuted(*req.Muted); err != nil {
		s.log.Error("set muted failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, MuteView{Muted: *req.Muted})
}

// dispatch runs cmd and answers with the new snapshot, or 409 when the
// command did not apply to the current state.
func (s *Server) dispatch(w http.ResponseWriter, cmd session.Command) {
	snapshot, ok := s.host.Dispatch(cmd)
	if !ok {
		writeJSON(w, http.StatusConflict, ErrorView{Error: "command not applicable", Kind: cmd.Kind()})
		return
	}
	writeJSON(w, http.StatusOK, snapshotView(snapshot))
}
