// engine/powers.go
package engine

import "fmt"

// PowerTarget designates the object of a role's active power. Which fields
// matter depends on the role: Assassin/Thief name a role, Magician names a
// player (or nobody, to redraw).
type PowerTarget struct {
	RoleID   int    `json:"roleId,omitempty"`
	PlayerID string `json:"playerId,omitempty"`
}

// Power is one role's special ability. Handlers are keyed by role ID;
// OnTurnStart fires when the role becomes active during the call-order
// advance, before the build/end-turn window opens. Activate resolves the
// player-directed part, once per turn.
type Power interface {
	// OnTurnStart applies the passive part of the power. May mutate gold,
	// hand, and the crown. Called on a clone only.
	OnTurnStart(s *GameState, holder *Player)

	// Activate applies the targeted part of the power, or returns
	// ErrPrecondition when the role has no targeted part.
	Activate(s *GameState, holder *Player, target PowerTarget) error
}

// powers maps role ID to its ability handler. Adding a role means adding an
// entry here; roles without an entry have no special behavior.
var powers = map[int]Power{
	RoleAssassin:  assassinPower{},
	RoleThief:     thiefPower{},
	RoleMagician:  magicianPower{},
	RoleKing:      kingPower{},
	RoleBishop:    colorIncomePower{color: ColorBlue},
	RoleMerchant:  merchantPower{},
	RoleArchitect: architectPower{},
	RoleWarlord:   colorIncomePower{color: ColorRed},
}

// UseRolePower resolves the active role's targeted ability. Usable once per
// turn, only by the live holder of the currently called role.
func (s *GameState) UseRolePower(playerID string, target PowerTarget) (*GameState, error) {
	p, err := s.requireActive(playerID)
	if err != nil {
		return s, err
	}
	if p.UsedPower {
		return s, fmt.Errorf("power of %s already used this turn: %w", p.Role, ErrPrecondition)
	}
	pw, ok := powers[s.CurrentRoleTurn]
	if !ok {
		return s, fmt.Errorf("%s has no power: %w", p.Role, ErrPrecondition)
	}

	next := s.Clone()
	np := next.PlayerByID(playerID)
	if err := pw.Activate(next, np, target); err != nil {
		return s, err
	}
	np.UsedPower = true
	return next, nil
}

// assassinPower marks a role dead for the round. Its holder forfeits the
// whole turn: no gold, no draw, no build.
type assassinPower struct{}

func (assassinPower) OnTurnStart(s *GameState, holder *Player) {}

func (assassinPower) Activate(s *GameState, holder *Player, target PowerTarget) error {
	role, ok := RoleByID(target.RoleID)
	if !ok {
		return fmt.Errorf("assassinate role %d: %w", target.RoleID, ErrUnknownRole)
	}
	if role.ID == RoleAssassin {
		return fmt.Errorf("the Assassin cannot target itself: %w", ErrPrecondition)
	}
	s.KilledRole = role.ID
	s.appendLog(fmt.Sprintf("%s assassinated the %s", holder.Name, role.Name))
	return nil
}

// thiefPower marks a role robbed; its holder's gold transfers to the Thief
// when that role is called.
type thiefPower struct{}

func (thiefPower) OnTurnStart(s *GameState, holder *Player) {}

func (thiefPower) Activate(s *GameState, holder *Player, target PowerTarget) error {
	role, ok := RoleByID(target.RoleID)
	if !ok {
		return fmt.Errorf("rob role %d: %w", target.RoleID, ErrUnknownRole)
	}
	if role.ID == RoleAssassin || role.ID == RoleThief {
		return fmt.Errorf("the Thief cannot rob the %s: %w", role.Name, ErrPrecondition)
	}
	if role.ID == s.KilledRole {
		return fmt.Errorf("cannot rob the assassinated role: %w", ErrPrecondition)
	}
	s.StolenRole = role.ID
	s.appendLog(fmt.Sprintf("%s will rob the %s", holder.Name, role.Name))
	return nil
}

// magicianPower swaps the whole hand with a target player, or, with no
// target, discards the hand under the deck and redraws the same count.
type magicianPower struct{}

func (magicianPower) OnTurnStart(s *GameState, holder *Player) {}

func (magicianPower) Activate(s *GameState, holder *Player, target PowerTarget) error {
	if target.PlayerID == "" {
		n := len(holder.Hand)
		discarded := holder.Hand
		holder.Hand = s.deal(n)
		// Old hand goes under the pile so card conservation holds.
		s.Deck = append(discarded, s.Deck...)
		s.appendLog(fmt.Sprintf("%s redrew %d cards", holder.Name, n))
		return nil
	}

	other := s.PlayerByID(target.PlayerID)
	if other == nil {
		return fmt.Errorf("swap hands with %s: %w", target.PlayerID, ErrUnknownPlayer)
	}
	if other.ID == holder.ID {
		return fmt.Errorf("cannot swap hands with yourself: %w", ErrPrecondition)
	}
	holder.Hand, other.Hand = other.Hand, holder.Hand
	s.appendLog(fmt.Sprintf("%s swapped hands with %s", holder.Name, other.Name))
	return nil
}

// kingPower claims the crown and collects noble income on becoming active.
type kingPower struct{}

func (kingPower) OnTurnStart(s *GameState, holder *Player) {
	if s.CrownPlayerID != holder.ID {
		s.CrownPlayerID = holder.ID
		s.appendLog(fmt.Sprintf("%s takes the crown", holder.Name))
	}
	payColorIncome(s, holder, ColorYellow)
}

func (kingPower) Activate(s *GameState, holder *Player, target PowerTarget) error {
	return fmt.Errorf("the King's power is passive: %w", ErrPrecondition)
}

// merchantPower earns one extra gold plus trade income on becoming active.
type merchantPower struct{}

func (merchantPower) OnTurnStart(s *GameState, holder *Player) {
	holder.Gold++
	s.appendLog(fmt.Sprintf("%s gains 1 gold as the Merchant", holder.Name))
	payColorIncome(s, holder, ColorGreen)
}

func (merchantPower) Activate(s *GameState, holder *Player, target PowerTarget) error {
	return fmt.Errorf("the Merchant's power is passive: %w", ErrPrecondition)
}

// architectPower draws two extra cards on becoming active.
type architectPower struct{}

func (architectPower) OnTurnStart(s *GameState, holder *Player) {
	if cards := s.deal(2); len(cards) > 0 {
		holder.Hand = append(holder.Hand, cards...)
		s.appendLog(fmt.Sprintf("%s draws %d extra cards as the Architect", holder.Name, len(cards)))
	}
}

func (architectPower) Activate(s *GameState, holder *Player, target PowerTarget) error {
	return fmt.Errorf("the Architect's power is passive: %w", ErrPrecondition)
}

// colorIncomePower pays one gold per built district of a color on becoming
// active. Shared by the Bishop and the Warlord.
type colorIncomePower struct {
	color string
}

func (p colorIncomePower) OnTurnStart(s *GameState, holder *Player) {
	payColorIncome(s, holder, p.color)
}

func (p colorIncomePower) Activate(s *GameState, holder *Player, target PowerTarget) error {
	return fmt.Errorf("power of %s is passive: %w", holder.Role, ErrPrecondition)
}

func payColorIncome(s *GameState, holder *Player, color string) {
	if n := holder.ColorCount(color); n > 0 {
		holder.Gold += n
		s.appendLog(fmt.Sprintf("%s earns %d gold from %s districts", holder.Name, n, color))
	}
}
