package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"paywise/models"
)

// Store owns the database handle for the ledger. Every component receives a
// Store at construction instead of reaching for a shared global; a Store
// obtained inside Atomically is bound to that transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithContext returns a Store whose operations are bound to ctx, so a caller
// timeout cancels the underlying statements.
func (s *Store) WithContext(ctx context.Context) *Store {
	return &Store{db: s.db.WithContext(ctx)}
}

// Atomically runs fn inside a storage transaction. fn receives a Store bound
// to the transaction; a nil return commits, any error (or panic) rolls the
// whole scope back so no partial write is ever visible.
func (s *Store) Atomically(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// NormalizeHandle lowercases and trims a user handle. Handles are stored
// normalized and are immutable after signup.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

func (s *Store) UserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) UserByHandle(handle string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", NormalizeHandle(handle)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchUsers matches first or last name case-insensitively (substring).
func (s *Store) SearchUsers(filter string) ([]models.User, error) {
	pattern := "%" + strings.ToLower(filter) + "%"
	var users []models.User
	err := s.db.
		Where("lower(first_name) LIKE ? OR lower(last_name) LIKE ?", pattern, pattern).
		Order("username").
		Find(&users).Error
	return users, err
}

// UpdateUser applies a partial profile update. Username is deliberately not
// an accepted column: handles never change once issued.
func (s *Store) UpdateUser(id uint, updates map[string]any) error {
	delete(updates, "username")
	if len(updates) == 0 {
		return nil
	}
	return s.db.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
}

// account returns the user's account or gorm.ErrRecordNotFound.
func (s *Store) account(userID uint) (*models.Account, error) {
	var acc models.Account
	if err := s.db.Where("user_id = ?", userID).First(&acc).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

// AccountFor returns the user's account, creating a zero-balance one if
// missing. Concurrent first calls race on the user_id unique index; the loser
// hits ON CONFLICT DO NOTHING and reads back the winner's row.
func (s *Store) AccountFor(userID uint) (*models.Account, error) {
	acc, err := s.account(userID)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	fresh := models.Account{UserID: userID}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return s.account(userID)
}

// AdjustBalance adds delta (cents, either sign) to the user's balance as a
// single conditional UPDATE. The balance guard rides in the WHERE clause, so
// concurrent debits cannot interleave into a negative balance and there is no
// application-level read-modify-write to lose.
func (s *Store) AdjustBalance(userID uint, delta int64) error {
	q := s.db.Model(&models.Account{}).Where("user_id = ?", userID)
	if delta < 0 {
		q = q.Where("balance >= ?", -delta)
	}
	res := q.Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("adjust balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if delta < 0 {
			return ErrInsufficientFunds
		}
		return fmt.Errorf("no account for user %d", userID)
	}
	return nil
}

// AddPayee records the directed sender->recipient edge. Inserting an existing
// edge is a no-op, so repeated transfers keep the payee set deduplicated.
func (s *Store) AddPayee(userID, payeeID uint) error {
	edge := models.Payee{UserID: userID, PayeeID: payeeID}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error; err != nil {
		return fmt.Errorf("add payee: %w", err)
	}
	return nil
}

// PayeeContact is the payee listing shape: the counterparty plus their
// account id when one exists.
type PayeeContact struct {
	UserID    uint   `json:"userId"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	AccountID *uint  `json:"accountId"`
}

func (s *Store) Payees(userID uint) ([]PayeeContact, error) {
	contacts := []PayeeContact{}
	err := s.db.Model(&models.Payee{}).
		Select("users.id AS user_id, users.username, users.first_name, users.last_name, accounts.id AS account_id").
		Joins("JOIN users ON users.id = payees.payee_id").
		Joins("LEFT JOIN accounts ON accounts.user_id = users.id").
		Where("payees.user_id = ?", userID).
		Order("payees.id").
		Scan(&contacts).Error
	return contacts, err
}

// AppendTransactions inserts the given records as one statement inside the
// ambient scope. Transactions are append-only; nothing in the repo updates
// them after this point.
func (s *Store) AppendTransactions(records ...*models.Transaction) error {
	if len(records) == 0 {
		return nil
	}
	if err := s.db.Create(records).Error; err != nil {
		return fmt.Errorf("append transactions: %w", err)
	}
	return nil
}

// TransactionFilter narrows ListTransactions. Zero values mean "no filter".
type TransactionFilter struct {
	Category string
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

func (s *Store) ListTransactions(userID uint, f TransactionFilter) ([]models.Transaction, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	q := s.db.Where("user_id = ?", userID)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.From != nil {
		q = q.Where("date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("date <= ?", *f.To)
	}
	var records []models.Transaction
	err := q.Order("date DESC").Limit(f.Limit).Offset((f.Page - 1) * f.Limit).Find(&records).Error
	return records, err
}

func (s *Store) Budgets(userID uint) ([]models.Budget, error) {
	var budgets []models.Budget
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&budgets).Error
	return budgets, err
}

func (s *Store) CreateBudget(b *models.Budget) error {
	return s.db.Create(b).Error
}

func (s *Store) DeleteBudget(userID, id uint) error {
	return s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Budget{}).Error
}

// AddSpent atomically bumps the matching budget's spent accumulator. Zero
// matching rows is fine: not every category has a budget.
func (s *Store) AddSpent(userID uint, category string, amount int64) error {
	return s.db.Model(&models.Budget{}).
		Where("user_id = ? AND category = ?", userID, category).
		Update("spent", gorm.Expr("spent + ?", amount)).Error
}

func (s *Store) Goals(userID uint) ([]models.Goal, error) {
	var goals []models.Goal
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&goals).Error
	return goals, err
}

func (s *Store) CreateGoal(g *models.Goal) error {
	return s.db.Create(g).Error
}

func (s *Store) DeleteGoal(userID, id uint) error {
	return s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Goal{}).Error
}

// AddProgress atomically bumps the matching goal's progress accumulator.
func (s *Store) AddProgress(userID uint, title string, amount int64) error {
	return s.db.Model(&models.Goal{}).
		Where("user_id = ? AND title = ?", userID, title).
		Update("progress", gorm.Expr("progress + ?", amount)).Error
}
