package session

import (
	"openplay-app/internal/model"

	"golang.org/x/text/cases"
)

// SameName compares player names the way the roster and the player directory do.
func SameName(a, b string) bool {
	return NameKey(a) == NameKey(b)
}

// NameKey is the case-folded, space-normalized form of a player name.
func NameKey(name string) string {
	return cases.Fold().String(normalizeName(name))
}

func addPlayer(s *model.Session, name string, skill model.SkillLevel, env Env) bool {
	name = normalizeName(name)
	if name == "" {
		return false
	}
	for _, p := range s.Players {
		if SameName(p.Name, name) {
			return false
		}
	}
	if !skill.Valid() {
		skill = model.SkillUnset
	}
	p := model.Player{
		ID:           env.newID(),
		Name:         name,
		Skill:        skill,
		Status:       model.StatusNotHere,
		CourtsPlayed: []int{},
	}
	if PhaseOf(*s) == PhaseActive {
		p.Status = model.StatusCheckedIn
		p.CheckedInAt = timePtr(env.Now)
	}
	s.Players = append(s.Players, p)
	return true
}

// removePlayer drops the player and releases their lock partner. Matches that
// still reference the id keep it.
func removePlayer(s *model.Session, id string) bool {
	i := playerIndex(*s, id)
	if i < 0 {
		return false
	}
	releaseLock(s, id)
	s.Players = append(s.Players[:i], s.Players[i+1:]...)
	return true
}

func setSkill(s *model.Session, id string, skill model.SkillLevel) bool {
	i := playerIndex(*s, id)
	if i < 0 || (skill != model.SkillUnset && !skill.Valid()) {
		return false
	}
	s.Players[i].Skill = skill
	return true
}

func setCourts(s *model.Session, courts int) bool {
	s.Courts = clampCourts(courts)
	return true
}

func setGameMode(s *model.Session, mode model.GameMode) bool {
	if !mode.Valid() {
		return false
	}
	s.GameMode = mode
	return true
}

func setLocation(s *model.Session, location string) bool {
	s.Location = normalizeName(location)
	return true
}

func checkIn(s *model.Session, id string, env Env) bool {
	i := playerIndex(*s, id)
	if i < 0 {
		return false
	}
	p := &s.Players[i]
	if p.Status == model.StatusCheckedIn || p.Status == model.StatusPlaying {
		return false
	}
	p.Status = model.StatusCheckedIn
	p.CheckedInAt = timePtr(env.Now)
	if PhaseOf(*s) == PhaseActive {
		fillCourts(s, env)
	}
	return true
}

// checkOut leaves stats in place. Players on court must be pulled instead.
func checkOut(s *model.Session, id string) bool {
	i := playerIndex(*s, id)
	if i < 0 {
		return false
	}
	p := &s.Players[i]
	if p.Status == model.StatusLeft || p.Status == model.StatusPlaying {
		return false
	}
	p.Status = model.StatusLeft
	return true
}

// lockPartners pairs a and b on both sides at once. Any earlier partner of
// either player is released first so no one-sided lock is left behind.
func lockPartners(s *model.Session, a, b string) bool {
	ia, ib := playerIndex(*s, a), playerIndex(*s, b)
	if ia < 0 || ib < 0 || a == b {
		return false
	}
	if s.Players[ia].LockedPartnerID == b && s.Players[ib].LockedPartnerID == a {
		return false
	}
	releaseLock(s, a)
	releaseLock(s, b)
	s.Players[ia].LockedPartnerID = b
	s.Players[ib].LockedPartnerID = a
	return true
}

func unlockPartner(s *model.Session, id string) bool {
	i := playerIndex(*s, id)
	if i < 0 || s.Players[i].LockedPartnerID == "" {
		return false
	}
	releaseLock(s, id)
	return true
}

// releaseLock clears id's lock and any pointer back at id.
func releaseLock(s *model.Session, id string) {
	for i := range s.Players {
		p := &s.Players[i]
		if p.ID == id || p.LockedPartnerID == id {
			p.LockedPartnerID = ""
		}
	}
}
