package ledger

import (
	"go.uber.org/zap"

	"paywise/models"
)

// CommitHook consumes transactions after their atomic scope has committed.
type CommitHook interface {
	OnTransactionCommitted(tx models.Transaction)
}

// Aggregator maintains the derived budget/goal accumulators from committed
// transactions. It runs outside the transaction's atomic scope: the ledger
// record is the source of truth and these fields can be rebuilt from it, so a
// failed increment is logged and swallowed rather than rolling anything back.
type Aggregator struct {
	store *Store
	log   *zap.Logger
}

func NewAggregator(store *Store, log *zap.Logger) *Aggregator {
	return &Aggregator{store: store, log: log}
}

// OnTransactionCommitted bumps budget spent for categorized spending and goal
// progress for categorized income (matched by goal title). Transactions with
// no category, or with no matching budget/goal, are no-ops.
func (a *Aggregator) OnTransactionCommitted(tx models.Transaction) {
	if tx.Category == "" {
		return
	}
	if tx.IsReceived {
		if err := a.store.AddProgress(tx.UserID, tx.Category, tx.Amount); err != nil {
			a.log.Warn("goal progress update failed",
				zap.Uint("userID", tx.UserID),
				zap.String("title", tx.Category),
				zap.Error(err))
		}
		return
	}
	if err := a.store.AddSpent(tx.UserID, tx.Category, tx.Amount); err != nil {
		a.log.Warn("budget spent update failed",
			zap.Uint("userID", tx.UserID),
			zap.String("category", tx.Category),
			zap.Error(err))
	}
}
