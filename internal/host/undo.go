package host

import (
	"time"

	"openplay-app/internal/model"
	"openplay-app/internal/session"

	"go.uber.org/zap"
)

// trackUndo keeps one expiry timer for the current undo slot. A new slot
// replaces the previous timer; an emptied slot stops it. Callers hold h.mu.
func (h *Host) trackUndo(prev, next *model.UndoAction) {
	if next == nil {
		h.stopUndoTimer()
		return
	}
	if prev != nil && *prev == *next {
		return
	}
	h.armUndo(*next, h.undoExpiry)
}

func (h *Host) armUndo(action model.UndoAction, after time.Duration) {
	h.stopUndoTimer()
	h.undoTimer = h.clock.AfterFunc(after, func() { h.expireUndo(action) })
}

func (h *Host) stopUndoTimer() {
	if h.undoTimer != nil {
		h.undoTimer.Stop()
		h.undoTimer = nil
	}
}

// expireUndo clears the slot only if it still holds the action the timer was armed for.
func (h *Host) expireUndo(action model.UndoAction) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || h.state.Undo == nil || *h.state.Undo != action {
		return
	}
	h.log.Debug("undo expired", zap.String("match_id", action.MatchID))
	h.apply(session.ClearUndo{})
}

// restoreUndo re-arms the timer for a slot loaded from the store. Callers hold h.mu.
func (h *Host) restoreUndo() {
	if h.state.Undo == nil {
		return
	}
	remaining := h.state.Undo.Timestamp.Add(h.undoExpiry).Sub(h.clock.Now())
	if remaining <= 0 {
		h.apply(session.ClearUndo{})
		return
	}
	h.armUndo(*h.state.Undo, remaining)
}
