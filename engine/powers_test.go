package engine

import (
	"errors"
	"testing"
	"time"
)

// turnsState builds a synthetic TURNS-phase state with the given role
// bindings (player id -> role id) and the lowest bound role active.
func turnsState(t *testing.T, bindings map[string]int) *GameState {
	t.Helper()
	s := &GameState{
		Phase:     PhaseTurns,
		RoomCode:  "TEST01",
		CreatedAt: time.Now().UTC(),
		Deck:      DistrictCatalog(),
		Log:       []string{"test"},
	}
	lowest := RoleCount + 1
	for _, id := range []string{"p0", "p1", "p2"} {
		roleID, ok := bindings[id]
		if !ok {
			continue
		}
		s.Players = append(s.Players, Player{
			ID:   id,
			Name: "Player " + id,
			Gold: StartingGold,
			Role: RoleName(roleID),
		})
		if roleID < lowest {
			lowest = roleID
		}
	}
	s.Players[0].IsHost = true
	s.CurrentRoleTurn = lowest
	return s
}

func TestAssassin_KillSkipsVictimTurn(t *testing.T) {
	rng := testRng()
	s := turnsState(t, map[string]int{"p0": RoleAssassin, "p1": RoleBishop})

	s2, err := s.UseRolePower("p0", PowerTarget{RoleID: RoleBishop})
	if err != nil {
		t.Fatalf("Assassin power failed: %v", err)
	}
	if s2.KilledRole != RoleBishop {
		t.Fatalf("Expected killed role %d, got %d", RoleBishop, s2.KilledRole)
	}

	// Ending the Assassin's turn must skip the Bishop entirely and wrap the
	// round: no income, no draw for the victim.
	victimGold := s2.PlayerByID("p1").Gold
	victimHand := len(s2.PlayerByID("p1").Hand)
	s3, err := s2.EndTurn("p0", rng)
	if err != nil {
		t.Fatalf("EndTurn failed: %v", err)
	}
	if s3.Phase != PhaseSelection {
		t.Fatalf("Expected round to wrap past the dead Bishop, got phase %s", s3.Phase)
	}
	if s3.PlayerByID("p1").Gold != victimGold {
		t.Error("Assassinated player must not collect income")
	}
	if len(s3.PlayerByID("p1").Hand) != victimHand {
		t.Error("Assassinated player must not draw")
	}
	if s3.KilledRole != 0 {
		t.Error("Killed mark must clear on round reset")
	}
}

func TestAssassin_CannotTargetItself(t *testing.T) {
	s := turnsState(t, map[string]int{"p0": RoleAssassin, "p1": RoleKing})
	if _, err := s.UseRolePower("p0", PowerTarget{RoleID: RoleAssassin}); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("Expected ErrPrecondition, got %v", err)
	}
	if _, err := s.UseRolePower("p0", PowerTarget{RoleID: 42}); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("Expected ErrUnknownRole, got %v", err)
	}
}

func TestThief_TakesAllGoldWhenVictimActs(t *testing.T) {
	rng := testRng()
	s := turnsState(t, map[string]int{"p0": RoleThief, "p1": RoleWarlord})
	s.PlayerByID("p1").Gold = 7

	s2, err := s.UseRolePower("p0", PowerTarget{RoleID: RoleWarlord})
	if err != nil {
		t.Fatalf("Thief power failed: %v", err)
	}
	if s2.StolenRole != RoleWarlord {
		t.Fatalf("Expected stolen role %d, got %d", RoleWarlord, s2.StolenRole)
	}

	thiefGold := s2.PlayerByID("p0").Gold
	s3, err := s2.EndTurn("p0", rng)
	if err != nil {
		t.Fatalf("EndTurn failed: %v", err)
	}
	// The Thief ended the turn (+income), then the Warlord's 7 gold moved over
	// before the Warlord's turn proceeded.
	if got := s3.PlayerByID("p0").Gold; got != thiefGold+EndTurnIncome+7 {
		t.Errorf("Expected thief gold %d, got %d", thiefGold+EndTurnIncome+7, got)
	}
	if got := s3.PlayerByID("p1").Gold; got != 0 {
		t.Errorf("Expected victim gold 0, got %d", got)
	}
	if s3.StolenRole != 0 {
		t.Error("Stolen mark must clear once the transfer happens")
	}
	if s3.CurrentRoleTurn != RoleWarlord {
		t.Errorf("Victim's turn should still proceed, got role turn %d", s3.CurrentRoleTurn)
	}
}

func TestThief_TargetRestrictions(t *testing.T) {
	s := turnsState(t, map[string]int{"p0": RoleThief, "p1": RoleKing})
	if _, err := s.UseRolePower("p0", PowerTarget{RoleID: RoleAssassin}); !errors.Is(err, ErrPrecondition) {
		t.Errorf("Expected ErrPrecondition robbing the Assassin, got %v", err)
	}
	s.KilledRole = RoleKing
	if _, err := s.UseRolePower("p0", PowerTarget{RoleID: RoleKing}); !errors.Is(err, ErrPrecondition) {
		t.Errorf("Expected ErrPrecondition robbing the assassinated role, got %v", err)
	}
}

func TestMagician_SwapHands(t *testing.T) {
	s := turnsState(t, map[string]int{"p0": RoleMagician, "p1": RoleKing})
	s.PlayerByID("p0").Hand = []District{districtCatalog[0]}
	s.PlayerByID("p1").Hand = []District{districtCatalog[1], districtCatalog[2]}

	s2, err := s.UseRolePower("p0", PowerTarget{PlayerID: "p1"})
	if err != nil {
		t.Fatalf("Magician swap failed: %v", err)
	}
	if len(s2.PlayerByID("p0").Hand) != 2 || len(s2.PlayerByID("p1").Hand) != 1 {
		t.Errorf("Hands did not swap: %d / %d cards",
			len(s2.PlayerByID("p0").Hand), len(s2.PlayerByID("p1").Hand))
	}

	// Self-swap is rejected.
	if _, err := s.UseRolePower("p0", PowerTarget{PlayerID: "p0"}); !errors.Is(err, ErrPrecondition) {
		t.Errorf("Expected ErrPrecondition for self-swap, got %v", err)
	}
}

func TestMagician_RedrawConservesCards(t *testing.T) {
	s := turnsState(t, map[string]int{"p0": RoleMagician, "p1": RoleKing})
	s.PlayerByID("p0").Hand = []District{districtCatalog[0], districtCatalog[1]}
	before := cardCount(s)

	s2, err := s.UseRolePower("p0", PowerTarget{})
	if err != nil {
		t.Fatalf("Magician redraw failed: %v", err)
	}
	if len(s2.PlayerByID("p0").Hand) != 2 {
		t.Errorf("Redraw should keep the hand size, got %d", len(s2.PlayerByID("p0").Hand))
	}
	if cardCount(s2) != before {
		t.Errorf("Redraw broke card conservation: %d -> %d", before, cardCount(s2))
	}
}

func TestKing_TakesCrownOnTurnStart(t *testing.T) {
	rng := testRng()
	s := turnsState(t, map[string]int{"p0": RoleThief, "p1": RoleKing})
	s.CrownPlayerID = "p0"
	s.PlayerByID("p1").Districts = []District{districtCatalog[14]} // a noble district

	s2, err := s.EndTurn("p0", rng)
	if err != nil {
		t.Fatalf("EndTurn failed: %v", err)
	}
	if s2.CrownPlayerID != "p1" {
		t.Errorf("Expected the King to take the crown, holder is %q", s2.CrownPlayerID)
	}
	if got := s2.PlayerByID("p1").Gold; got != StartingGold+1 {
		t.Errorf("Expected noble income of 1, gold %d -> %d", StartingGold, got)
	}
}

func TestMerchant_ExtraGoldOnTurnStart(t *testing.T) {
	rng := testRng()
	s := turnsState(t, map[string]int{"p0": RoleKing, "p1": RoleMerchant})
	s.PlayerByID("p1").Districts = []District{districtCatalog[0], districtCatalog[1]} // two trade districts

	s2, err := s.EndTurn("p0", rng)
	if err != nil {
		t.Fatalf("EndTurn failed: %v", err)
	}
	// +1 Merchant bonus, +2 trade income.
	if got := s2.PlayerByID("p1").Gold; got != StartingGold+3 {
		t.Errorf("Expected merchant gold %d, got %d", StartingGold+3, got)
	}
}

func TestArchitect_DrawsTwoOnTurnStart(t *testing.T) {
	rng := testRng()
	s := turnsState(t, map[string]int{"p0": RoleKing, "p1": RoleArchitect})
	deckBefore := len(s.Deck)

	s2, err := s.EndTurn("p0", rng)
	if err != nil {
		t.Fatalf("EndTurn failed: %v", err)
	}
	if got := len(s2.PlayerByID("p1").Hand); got != 2 {
		t.Errorf("Expected 2 extra cards, got %d", got)
	}
	// King drew one on end-turn, Architect two on turn start.
	if got := len(s2.Deck); got != deckBefore-3 {
		t.Errorf("Expected deck %d, got %d", deckBefore-3, got)
	}
}

func TestUseRolePower_OncePerTurn(t *testing.T) {
	s := turnsState(t, map[string]int{"p0": RoleAssassin, "p1": RoleKing})
	s2, err := s.UseRolePower("p0", PowerTarget{RoleID: RoleKing})
	if err != nil {
		t.Fatalf("First activation failed: %v", err)
	}
	if _, err := s2.UseRolePower("p0", PowerTarget{RoleID: RoleKing}); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("Expected ErrPrecondition on second activation, got %v", err)
	}
}

func TestUseRolePower_PassiveRolesReject(t *testing.T) {
	for _, roleID := range []int{RoleKing, RoleBishop, RoleMerchant, RoleArchitect, RoleWarlord} {
		s := turnsState(t, map[string]int{"p0": roleID})
		if _, err := s.UseRolePower("p0", PowerTarget{}); !errors.Is(err, ErrPrecondition) {
			t.Errorf("Role %d: expected ErrPrecondition, got %v", roleID, err)
		}
	}
}

func TestUseRolePower_OnlyActiveHolder(t *testing.T) {
	s := turnsState(t, map[string]int{"p0": RoleAssassin, "p1": RoleThief})
	if _, err := s.UseRolePower("p1", PowerTarget{RoleID: RoleKing}); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("Expected ErrNotYourTurn, got %v", err)
	}
}
