package ledger

import (
	"errors"
	"fmt"
)

// Validation errors returned by the applier. A rejected batch leaves ledger
// state and chain untouched; the sentinel identifies which precondition
// failed so callers can surface it.
var (
	ErrDuplicateAddress    = errors.New("address already in use")
	ErrDuplicateUsername   = errors.New("username already in use")
	ErrUnknownAccount      = errors.New("unknown account")
	ErrUnknownAsset        = errors.New("unknown asset")
	ErrNotOwner            = errors.New("not the asset owner")
	ErrNotForSale          = errors.New("asset is not for sale")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidPrice        = errors.New("invalid price")
	ErrSelfTrade           = errors.New("buyer and seller are the same account")
	ErrEmptyBatch          = errors.New("empty transaction batch")
	ErrDuplicateAsset      = errors.New("asset id already in use")
	ErrInvalidAmount       = errors.New("invalid amount")

	// ErrUnexpectedGenesis rejects a GENESIS transaction anywhere past
	// block 0.
	ErrUnexpectedGenesis = errors.New("genesis transaction outside block 0")

	// ErrAccountOwnsAssets rejects deleting an account that still owns
	// assets at its position in the batch. Owned assets must be transferred
	// or burned by earlier transactions in the same batch.
	ErrAccountOwnsAssets = errors.New("account still owns assets")
)

// BrokenLinkError is an integrity error: block Index failed hash or linkage
// verification. Unlike validation errors it is not recoverable for the
// affected chain; the stored chain was tampered with or corrupted.
type BrokenLinkError struct {
	Index int
}

func (e *BrokenLinkError) Error() string {
	return fmt.Sprintf("broken chain link at block %d", e.Index)
}
