// engine/action.go
package engine

import "fmt"

// ActionType enumerates every kind of player action. The set is closed:
// Apply switches exhaustively over it, so a new action kind is a
// compile-surface change, not a stringly-typed one.
type ActionType string

const (
	ActionJoin          ActionType = "join"
	ActionToggleReady   ActionType = "toggle_ready"
	ActionStartGame     ActionType = "start_game"
	ActionPickRole      ActionType = "pick_role"
	ActionBuildDistrict ActionType = "build_district"
	ActionEndTurn       ActionType = "end_turn"
	ActionUsePower      ActionType = "use_power"
)

// Action is the tagged variant carried from the transport to the engine.
// Only the fields relevant to Type are read.
type Action struct {
	Type       ActionType  `json:"type"`
	PlayerName string      `json:"playerName,omitempty"` // join only
	RoleID     int         `json:"roleId,omitempty"`     // pick_role
	DistrictID int         `json:"districtId,omitempty"` // build_district
	Target     PowerTarget `json:"target,omitempty"`     // use_power
}

// Apply is the single entry point of the engine: one state in, one action,
// one acting player, one new state out (or the original state plus a typed
// rejection). It performs no I/O and takes no locks; callers serialize
// per room.
func Apply(s *GameState, actingPlayerID string, act Action, rng Rand) (*GameState, error) {
	switch act.Type {
	case ActionJoin:
		return s.Join(UserInfo{ID: actingPlayerID, Name: act.PlayerName})
	case ActionToggleReady:
		return s.ToggleReady(actingPlayerID)
	case ActionStartGame:
		return s.StartGame(actingPlayerID, rng)
	case ActionPickRole:
		return s.PickRole(actingPlayerID, act.RoleID, rng)
	case ActionBuildDistrict:
		return s.BuildDistrict(actingPlayerID, act.DistrictID)
	case ActionEndTurn:
		return s.EndTurn(actingPlayerID, rng)
	case ActionUsePower:
		return s.UseRolePower(actingPlayerID, act.Target)
	default:
		return s, fmt.Errorf("unknown action type %q: %w", act.Type, ErrPrecondition)
	}
}
