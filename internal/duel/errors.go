package duel

import "errors"

// Validation failures raised before any chain or oracle call is made.
var (
	ErrNotFound          = errors.New("duel not found")
	ErrInvalidAddress    = errors.New("invalid wallet address")
	ErrWrongStatus       = errors.New("operation not allowed in current duel status")
	ErrSelfJoin          = errors.New("cannot join own duel")
	ErrStakeOutOfBounds  = errors.New("stake outside allowed bounds")
	ErrAssetNotAllowed   = errors.New("asset not allowed")
	ErrInvalidDirection  = errors.New("invalid direction")
	ErrInvalidType       = errors.New("invalid duel type")
	ErrInvalidDuration   = errors.New("duration must be positive")
	ErrInvalidStake      = errors.New("stake must be a positive amount")
	ErrJoinWindowClosed  = errors.New("join window has closed")
	ErrJoinWindowOpen    = errors.New("join window has not closed yet")
	ErrNotExpired        = errors.New("duel has not reached its end time")
	ErrNotCreator        = errors.New("caller is not the duel creator")
	ErrNotParticipant    = errors.New("caller is not a duel participant")
	ErrNotOnChain        = errors.New("duel has no on-chain id")
	ErrAlreadyReclaimed  = errors.New("stake already reclaimed")
	ErrChainMismatch     = errors.New("chain record does not match request")
)

// IsValidation reports whether err is a malformed or out-of-bounds request
// rather than a lifecycle conflict or an infrastructure fault.
func IsValidation(err error) bool {
	for _, e := range []error{
		ErrInvalidAddress, ErrStakeOutOfBounds, ErrAssetNotAllowed,
		ErrInvalidDirection, ErrInvalidType, ErrInvalidDuration, ErrInvalidStake,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
