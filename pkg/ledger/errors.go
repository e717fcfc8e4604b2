package ledger

import "errors"

// Stable error kinds surfaced to the route layer. Everything else coming out
// of the core is a storage failure: the enclosing scope has been rolled back
// and the operation is safe to retry.
var (
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrInsufficientFunds       = errors.New("insufficient balance")
	ErrRecipientNotFound       = errors.New("invalid recipient")
	ErrRecipientAccountMissing = errors.New("recipient account not found")
	ErrSelfTransfer            = errors.New("cannot transfer to yourself")
)
