// engine/types.go
package engine

import (
	"time"
)

// Phase is the coarse game phase. It governs which transitions are legal.
type Phase string

const (
	PhaseLobby     Phase = "LOBBY"
	PhaseSelection Phase = "SELECTION"
	PhaseTurns     Phase = "TURNS"
	PhaseEnded     Phase = "ENDED"
)

// District is a buildable card. Three copies of every template exist in the
// deck, all sharing the template ID.
type District struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Cost  int    `json:"cost"`
	Color string `json:"color"`
	Type  string `json:"type"`
}

// Role is one of the eight characters. ID doubles as the call order (1..8).
type Role struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Power string `json:"power"`
	Color string `json:"color"`
}

// Player is one seat at the table. Players[0] is always the host.
type Player struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Gold      int        `json:"gold"`
	Hand      []District `json:"hand"`
	Districts []District `json:"districts"`
	Role      string     `json:"role,omitempty"`
	IsReady   bool       `json:"isReady"`
	IsHost    bool       `json:"isHost"`
	UsedPower bool       `json:"usedPower,omitempty"`
}

// HasBuilt reports whether the player already owns a built district with the
// given template ID.
func (p *Player) HasBuilt(districtID int) bool {
	for _, d := range p.Districts {
		if d.ID == districtID {
			return true
		}
	}
	return false
}

// ColorCount counts built districts of the given color.
func (p *Player) ColorCount(color string) int {
	n := 0
	for _, d := range p.Districts {
		if d.Color == color {
			n++
		}
	}
	return n
}

// UserInfo identifies an already-authenticated participant. The engine never
// verifies identity; it trusts whatever the transport hands it.
type UserInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GameState is the single aggregate for one room, replicated wholesale to
// every client on each change. All transitions are copy-on-write: the input
// state is never mutated in place.
type GameState struct {
	Phase              Phase      `json:"phase"`
	Players            []Player   `json:"players"`
	CrownPlayerID      string     `json:"crownPlayerId,omitempty"`
	AvailableRoles     []Role     `json:"availableRoles"`
	CurrentPickerIndex int        `json:"currentPickerIndex"`
	CurrentRoleTurn    int        `json:"currentRoleTurn"`
	Deck               []District `json:"deck"`
	KilledRole         int        `json:"killedRole,omitempty"`
	StolenRole         int        `json:"stolenRole,omitempty"`
	Log                []string   `json:"log"`
	RoomCode           string     `json:"roomCode"`
	LobbyName          string     `json:"lobbyName,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// Clone returns a deep copy. Transitions mutate the clone and hand it back,
// leaving the receiver untouched.
func (s *GameState) Clone() *GameState {
	c := *s

	c.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		c.Players[i] = p
		c.Players[i].Hand = append([]District(nil), p.Hand...)
		c.Players[i].Districts = append([]District(nil), p.Districts...)
	}
	c.AvailableRoles = append([]Role(nil), s.AvailableRoles...)
	c.Deck = append([]District(nil), s.Deck...)
	c.Log = append([]string(nil), s.Log...)

	return &c
}

// PlayerByID returns a pointer into Players, or nil.
func (s *GameState) PlayerByID(id string) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// PlayerByRole returns the holder of the role with the given ID, or nil if
// the role was not picked this round.
func (s *GameState) PlayerByRole(roleID int) *Player {
	name := RoleName(roleID)
	if name == "" {
		return nil
	}
	for i := range s.Players {
		if s.Players[i].Role == name {
			return &s.Players[i]
		}
	}
	return nil
}

// ActivePlayer returns the holder of the currently called role during TURNS,
// or nil.
func (s *GameState) ActivePlayer() *Player {
	if s.Phase != PhaseTurns || s.CurrentRoleTurn < 1 || s.CurrentRoleTurn > RoleCount {
		return nil
	}
	return s.PlayerByRole(s.CurrentRoleTurn)
}

// Winner returns the first player with a completed citadel, or nil.
func (s *GameState) Winner() *Player {
	for i := range s.Players {
		if len(s.Players[i].Districts) >= WinDistrictCount {
			return &s.Players[i]
		}
	}
	return nil
}

// IsComplete reports whether any player has built a full citadel.
func (s *GameState) IsComplete() bool {
	return s.Winner() != nil
}

func (s *GameState) appendLog(entry string) {
	s.Log = append(s.Log, entry)
}

// Status returns the last log entry, the line clients surface as the current
// room status.
func (s *GameState) Status() string {
	if len(s.Log) == 0 {
		return ""
	}
	return s.Log[len(s.Log)-1]
}
