// engine/game.go
package engine

import (
	"fmt"
	"time"
)

// NewGame creates the state for a fresh room. The creating player is seated
// as host with starting gold and an opening hand dealt from a freshly
// shuffled draw pile.
func NewGame(user UserInfo, roomCode, lobbyName string, rng Rand) *GameState {
	s := &GameState{
		Phase:           PhaseLobby,
		Deck:            newDeck(rng),
		CurrentRoleTurn: 0,
		RoomCode:        roomCode,
		LobbyName:       lobbyName,
		CreatedAt:       time.Now().UTC(),
	}

	host := Player{
		ID:     user.ID,
		Name:   user.Name,
		Gold:   StartingGold,
		IsHost: true,
	}
	host.Hand = s.deal(StartingHandSize)
	s.Players = append(s.Players, host)

	s.appendLog(fmt.Sprintf("Room %s created by %s", roomCode, user.Name))
	return s
}

// Join seats a new player. Rejected outside LOBBY; a join by an existing
// member is a benign no-op returning the unchanged state.
func (s *GameState) Join(user UserInfo) (*GameState, error) {
	if s.Phase != PhaseLobby {
		return s, fmt.Errorf("join: %w", ErrInvalidPhase)
	}
	if s.PlayerByID(user.ID) != nil {
		return s, ErrAlreadyMember
	}
	if len(s.Players) >= MaxPlayers {
		return s, ErrRoomFull
	}

	next := s.Clone()
	p := Player{
		ID:   user.ID,
		Name: user.Name,
		Gold: StartingGold,
	}
	p.Hand = next.deal(StartingHandSize)
	next.Players = append(next.Players, p)
	next.appendLog(fmt.Sprintf("%s joined the room", user.Name))
	return next, nil
}

// ToggleReady flips the player's lobby ready bit.
func (s *GameState) ToggleReady(playerID string) (*GameState, error) {
	if s.Phase != PhaseLobby {
		return s, fmt.Errorf("toggle ready: %w", ErrInvalidPhase)
	}
	if s.PlayerByID(playerID) == nil {
		return s, ErrUnknownPlayer
	}

	next := s.Clone()
	p := next.PlayerByID(playerID)
	p.IsReady = !p.IsReady
	return next, nil
}

// StartGame moves the lobby into the first role selection. Host only; at
// least two players, all ready. The crown is assigned uniformly at random
// and its holder picks first from a fresh seven-role pool.
func (s *GameState) StartGame(playerID string, rng Rand) (*GameState, error) {
	if s.Phase != PhaseLobby {
		return s, fmt.Errorf("start game: %w", ErrInvalidPhase)
	}
	if len(s.Players) == 0 || s.Players[0].ID != playerID {
		return s, fmt.Errorf("start game: only the host may start: %w", ErrNotYourTurn)
	}
	if len(s.Players) < 2 {
		return s, fmt.Errorf("start game: need at least 2 players: %w", ErrPrecondition)
	}
	for i := range s.Players {
		if !s.Players[i].IsReady {
			return s, fmt.Errorf("start game: %s is not ready: %w", s.Players[i].Name, ErrPrecondition)
		}
	}

	next := s.Clone()
	crownIdx := rng.Intn(len(next.Players))
	next.CrownPlayerID = next.Players[crownIdx].ID
	next.CurrentPickerIndex = crownIdx
	next.AvailableRoles = newRolePool(rng)
	next.Phase = PhaseSelection
	next.appendLog(fmt.Sprintf("Game started, %s holds the crown and picks first", next.Players[crownIdx].Name))
	return next, nil
}

// PickRole binds the chosen role to the current picker and advances the
// selection. After the last player picks, play moves to TURNS starting at
// the first role that has an owner.
func (s *GameState) PickRole(playerID string, roleID int, rng Rand) (*GameState, error) {
	if s.Phase != PhaseSelection {
		return s, fmt.Errorf("pick role: %w", ErrInvalidPhase)
	}
	if s.Players[s.CurrentPickerIndex].ID != playerID {
		return s, fmt.Errorf("pick role: %w", ErrNotYourTurn)
	}
	idx := -1
	for i, r := range s.AvailableRoles {
		if r.ID == roleID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, fmt.Errorf("pick role %d: %w", roleID, ErrUnknownRole)
	}

	next := s.Clone()
	role := next.AvailableRoles[idx]
	next.Players[next.CurrentPickerIndex].Role = role.Name
	next.AvailableRoles = append(next.AvailableRoles[:idx], next.AvailableRoles[idx+1:]...)
	next.appendLog(fmt.Sprintf("%s picked a role", next.Players[next.CurrentPickerIndex].Name))

	next.CurrentPickerIndex++
	if next.CurrentPickerIndex >= len(next.Players) {
		next.Phase = PhaseTurns
		next.CurrentRoleTurn = 0
		next.advanceRole(rng)
	}
	return next, nil
}

// BuildDistrict pays for a hand card and adds it to the player's citadel.
// Completing a citadel ends the game in the same transition.
func (s *GameState) BuildDistrict(playerID string, districtID int) (*GameState, error) {
	p, err := s.requireActive(playerID)
	if err != nil {
		return s, err
	}

	handIdx := -1
	for i, d := range p.Hand {
		if d.ID == districtID {
			handIdx = i
			break
		}
	}
	if handIdx < 0 {
		return s, fmt.Errorf("build district %d: not in hand: %w", districtID, ErrUnknownDistrict)
	}
	card := p.Hand[handIdx]
	if p.HasBuilt(districtID) {
		return s, fmt.Errorf("build %s: %w", card.Name, ErrAlreadyBuilt)
	}
	if p.Gold < card.Cost {
		return s, fmt.Errorf("build %s costs %d, have %d: %w", card.Name, card.Cost, p.Gold, ErrInsufficientFunds)
	}

	next := s.Clone()
	np := next.PlayerByID(playerID)
	np.Gold -= card.Cost
	np.Hand = append(np.Hand[:handIdx], np.Hand[handIdx+1:]...)
	np.Districts = append(np.Districts, card)
	next.appendLog(fmt.Sprintf("%s built %s for %d gold", np.Name, card.Name, card.Cost))

	if len(np.Districts) >= WinDistrictCount {
		next.Phase = PhaseEnded
		next.appendLog(fmt.Sprintf("%s completed a citadel of %d districts and wins", np.Name, len(np.Districts)))
	}
	return next, nil
}

// EndTurn closes the active role's turn: fixed gold income, one card drawn
// if the deck allows, then the call order advances.
func (s *GameState) EndTurn(playerID string, rng Rand) (*GameState, error) {
	p, err := s.requireActive(playerID)
	if err != nil {
		return s, err
	}

	next := s.Clone()
	np := next.PlayerByID(playerID)
	np.Gold += EndTurnIncome
	drew := ""
	if cards := next.deal(1); len(cards) == 1 {
		np.Hand = append(np.Hand, cards[0])
		drew = ", drew a card"
	}
	next.appendLog(fmt.Sprintf("%s (%s) ended the turn: +%d gold%s", np.Name, p.Role, EndTurnIncome, drew))

	next.advanceRole(rng)
	return next, nil
}

// requireActive validates that playerID holds the currently called role.
func (s *GameState) requireActive(playerID string) (*Player, error) {
	if s.Phase != PhaseTurns {
		return nil, fmt.Errorf("turn action: %w", ErrInvalidPhase)
	}
	p := s.PlayerByID(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if RoleIDByName(p.Role) != s.CurrentRoleTurn {
		return nil, fmt.Errorf("turn action: %s is not active: %w", RoleName(s.CurrentRoleTurn), ErrNotYourTurn)
	}
	return p, nil
}

// advanceRole walks the call order to the next owned, living role. It is an
// explicit loop bounded by the role count; walking past the last role resets
// the round back to SELECTION. Mutates the receiver, so it is only ever
// called on a clone.
func (s *GameState) advanceRole(rng Rand) {
	for next := s.CurrentRoleTurn + 1; next <= RoleCount; next++ {
		s.CurrentRoleTurn = next
		holder := s.PlayerByRole(next)
		if holder == nil {
			continue
		}
		if s.KilledRole == next {
			s.appendLog(fmt.Sprintf("%s (%s) was assassinated and forfeits the turn", holder.Name, holder.Role))
			continue
		}
		if s.StolenRole == next {
			if thief := s.PlayerByRole(RoleThief); thief != nil && thief.ID != holder.ID && holder.Gold > 0 {
				s.appendLog(fmt.Sprintf("The Thief takes %d gold from %s", holder.Gold, holder.Name))
				thief.Gold += holder.Gold
				holder.Gold = 0
			}
			s.StolenRole = 0
		}
		if pw, ok := powers[next]; ok {
			pw.OnTurnStart(s, holder)
		}
		s.appendLog(fmt.Sprintf("Turn of %s (%s)", holder.Name, holder.Role))
		return
	}
	s.resetRound(rng)
}

// resetRound wraps a finished round back into role selection. Roles and
// per-turn flags clear, a fresh seven-role pool is drawn, and the crown
// holder picks first. The crown itself does not rotate; only the King's
// power moves it.
func (s *GameState) resetRound(rng Rand) {
	for i := range s.Players {
		s.Players[i].Role = ""
		s.Players[i].UsedPower = false
	}
	s.KilledRole = 0
	s.StolenRole = 0
	s.CurrentRoleTurn = 0
	s.AvailableRoles = newRolePool(rng)

	s.CurrentPickerIndex = 0
	for i := range s.Players {
		if s.Players[i].ID == s.CrownPlayerID {
			s.CurrentPickerIndex = i
			break
		}
	}
	s.Phase = PhaseSelection
	s.appendLog(fmt.Sprintf("Round over, %s picks a role first", s.Players[s.CurrentPickerIndex].Name))
}

// deal pops up to n cards off the end of the draw pile. Mutates the
// receiver, so it is only ever called on a clone or during NewGame.
func (s *GameState) deal(n int) []District {
	if n > len(s.Deck) {
		n = len(s.Deck)
	}
	if n == 0 {
		return nil
	}
	cards := make([]District, n)
	for i := 0; i < n; i++ {
		cards[i] = s.Deck[len(s.Deck)-1]
		s.Deck = s.Deck[:len(s.Deck)-1]
	}
	return cards
}
