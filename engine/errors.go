// engine/errors.go
package engine

import "errors"

// Rejection reasons. Every rejected transition returns one of these (possibly
// wrapped with context) and leaves the input state byte-for-byte unchanged.
// Nothing in the engine is fatal.
var (
	// ErrNotYourTurn: the action requires picker or active-role ownership
	// the caller does not have.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrInvalidPhase: the action is not legal in the current phase.
	ErrInvalidPhase = errors.New("invalid phase for action")

	// ErrInsufficientFunds: gold is below the district cost.
	ErrInsufficientFunds = errors.New("insufficient gold")

	// ErrAlreadyBuilt: a district with the same template ID is already in
	// the player's citadel.
	ErrAlreadyBuilt = errors.New("district already built")

	// ErrUnknownRole: the referenced role is not in the relevant collection.
	ErrUnknownRole = errors.New("unknown role")

	// ErrUnknownDistrict: the referenced district is not in the player's hand.
	ErrUnknownDistrict = errors.New("unknown district")

	// ErrUnknownPlayer: the acting player is not a member of the room.
	ErrUnknownPlayer = errors.New("unknown player")

	// ErrPrecondition: generic precondition failure (too few players, not
	// everyone ready, power already used, bad target).
	ErrPrecondition = errors.New("precondition failed")

	// ErrAlreadyMember: a join by an id already seated. Benign; callers get
	// the unchanged state back.
	ErrAlreadyMember = errors.New("already a member")

	// ErrRoomFull: the room is at the seat cap.
	ErrRoomFull = errors.New("room is full")
)
