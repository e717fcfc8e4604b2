package ledger

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"paywise/models"
)

// newTestStore opens a per-test in-memory sqlite database. The database is
// named after the test so parallel tests never share state.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Transaction{},
		&models.Budget{},
		&models.Goal{},
		&models.Payee{},
	))
	return NewStore(db)
}

func newTestCore(t *testing.T) (*Core, *Store) {
	t.Helper()
	store := newTestStore(t)
	core := NewCore(store, NewAggregator(store, zap.NewNop()), zap.NewNop())
	return core, store
}

// seedUser creates a user plus an account holding balance cents.
func seedUser(t *testing.T, s *Store, handle, first, last string, balance int64) models.User {
	t.Helper()
	u := models.User{
		Username:       handle,
		HashedPassword: []byte("irrelevant"),
		FirstName:      first,
		LastName:       last,
	}
	require.NoError(t, s.db.Create(&u).Error)
	require.NoError(t, s.db.Create(&models.Account{UserID: u.ID, Balance: balance}).Error)
	return u
}

func balanceOf(t *testing.T, s *Store, userID uint) int64 {
	t.Helper()
	acc, err := s.account(userID)
	require.NoError(t, err)
	return acc.Balance
}

func transactionsOf(t *testing.T, s *Store, userID uint) []models.Transaction {
	t.Helper()
	var records []models.Transaction
	require.NoError(t, s.db.Where("user_id = ?", userID).Order("id").Find(&records).Error)
	return records
}
