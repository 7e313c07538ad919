package escrow

import "errors"

var (
	// ErrRejected marks a transaction the chain mined and reverted. The
	// revert is authoritative: callers re-read chain state and reconcile
	// instead of retrying the same call.
	ErrRejected = errors.New("chain_rejected")

	// ErrUnconfirmed marks a transaction that never reached a mined
	// receipt (send failure, drop, confirmation timeout). No state
	// changed on either side; the whole operation may be retried.
	ErrUnconfirmed = errors.New("chain_unconfirmed")

	// ErrEventMissing marks a confirmed receipt that did not carry the
	// expected typed event. The operation is rejected for manual
	// reconciliation rather than guessing an identifier.
	ErrEventMissing = errors.New("expected_event_missing")
)
