package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"paywise/models"
)

// CategoryTransfer tags both sides of a peer-to-peer transfer.
const CategoryTransfer = "transfer"

// Core is the ledger facade: the only mutation path for balances and
// transaction records. All collaborators are constructor-injected.
type Core struct {
	store *Store
	hook  CommitHook
	log   *zap.Logger
}

func NewCore(store *Store, hook CommitHook, log *zap.Logger) *Core {
	return &Core{store: store, hook: hook, log: log}
}

// TransferResult describes a committed transfer: the shared correlation id
// and the two ledger records it produced.
type TransferResult struct {
	TransferID string             `json:"transferId"`
	Debit      models.Transaction `json:"debit"`
	Credit     models.Transaction `json:"credit"`
}

// Balance returns the caller's account, lazily creating it at zero.
func (c *Core) Balance(ctx context.Context, userID uint) (*models.Account, error) {
	return c.store.WithContext(ctx).AccountFor(userID)
}

// Transfer moves amount cents from sender to the user behind recipientHandle.
// Debit, credit, payee edge, and both transaction records commit as one
// atomic scope; any failure aborts the scope with zero partial effects.
func (c *Core) Transfer(ctx context.Context, senderID uint, recipientHandle string, amount int64) (*TransferResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var result TransferResult
	err := c.store.Atomically(ctx, func(tx *Store) error {
		sender, err := tx.UserByID(senderID)
		if err != nil {
			return fmt.Errorf("load sender: %w", err)
		}

		acc, err := tx.account(sender.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInsufficientFunds
			}
			return fmt.Errorf("load sender account: %w", err)
		}
		if acc.Balance < amount {
			return ErrInsufficientFunds
		}

		recipient, err := tx.UserByHandle(recipientHandle)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipientNotFound
			}
			return fmt.Errorf("resolve recipient: %w", err)
		}
		if recipient.ID == sender.ID {
			return ErrSelfTransfer
		}
		if _, err := tx.account(recipient.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipientAccountMissing
			}
			return fmt.Errorf("load recipient account: %w", err)
		}

		// The conditional UPDATE re-checks the balance, so a concurrent debit
		// between the read above and here still cannot overdraw.
		if err := tx.AdjustBalance(sender.ID, -amount); err != nil {
			return err
		}
		if err := tx.AdjustBalance(recipient.ID, amount); err != nil {
			return err
		}
		if err := tx.AddPayee(sender.ID, recipient.ID); err != nil {
			return err
		}

		now := time.Now().UTC()
		ref := uuid.NewString()
		debit := models.Transaction{
			UserID:      sender.ID,
			Amount:      amount,
			Description: "Money sent to " + recipient.FullName(),
			IsReceived:  false,
			Date:        now,
			Category:    CategoryTransfer,
			TransferID:  &ref,
		}
		credit := models.Transaction{
			UserID:      recipient.ID,
			Amount:      amount,
			Description: "Money received from " + sender.FullName(),
			IsReceived:  true,
			Date:        now,
			Category:    CategoryTransfer,
			TransferID:  &ref,
		}
		if err := tx.AppendTransactions(&debit, &credit); err != nil {
			return err
		}
		result = TransferResult{TransferID: ref, Debit: debit, Credit: credit}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.log.Debug("transfer committed",
		zap.String("transferId", result.TransferID),
		zap.Uint("senderID", result.Debit.UserID),
		zap.Uint("recipientID", result.Credit.UserID),
		zap.Int64("amount", amount))
	c.afterCommit(result.Debit, result.Credit)
	return &result, nil
}

// RecordTransaction logs a single-sided transaction against the caller's own
// account: credit if received, debit otherwise. Balance adjustment and the
// ledger record commit together; aggregation runs after, best-effort.
func (c *Core) RecordTransaction(ctx context.Context, userID uint, amount int64, description string, isReceived bool, category string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var record models.Transaction
	err := c.store.Atomically(ctx, func(tx *Store) error {
		if _, err := tx.AccountFor(userID); err != nil {
			return err
		}
		delta := -amount
		if isReceived {
			delta = amount
		}
		if err := tx.AdjustBalance(userID, delta); err != nil {
			return err
		}
		record = models.Transaction{
			UserID:      userID,
			Amount:      amount,
			Description: description,
			IsReceived:  isReceived,
			Date:        time.Now().UTC(),
			Category:    category,
		}
		return tx.AppendTransactions(&record)
	})
	if err != nil {
		return nil, err
	}

	c.afterCommit(record)
	return &record, nil
}

// afterCommit fires the TransactionCommitted hook for records whose scope has
// durably committed. Hook failures never surface to the caller.
func (c *Core) afterCommit(records ...models.Transaction) {
	if c.hook == nil {
		return
	}
	for _, r := range records {
		c.hook.OnTransactionCommitted(r)
	}
}
