package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"paywise/models"
)

func newTestAPI(t *testing.T) *api {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, migrate(db))
	return newAPI(db, []byte("test-secret"), zap.NewNop())
}

func TestRegisterCreatesUserAndAccount(t *testing.T) {
	a := newTestAPI(t)

	user, err := a.Register("Alice@Example.com", "secret1", "Alice", "Smith", 5000)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Username, "handle stored lowercase")

	var acc models.Account
	require.NoError(t, a.db.Where("user_id = ?", user.ID).First(&acc).Error)
	assert.EqualValues(t, 5000, acc.Balance)
}

func TestRegisterRejectsDuplicateHandle(t *testing.T) {
	a := newTestAPI(t)

	_, err := a.Register("alice@example.com", "secret1", "Alice", "Smith", 0)
	require.NoError(t, err)

	_, err = a.Register("ALICE@example.com", "secret2", "Other", "Person", 0)
	require.Error(t, err)

	var count int64
	require.NoError(t, a.db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRegisterValidation(t *testing.T) {
	a := newTestAPI(t)

	_, err := a.Register("al", "secret1", "A", "B", 0)
	require.Error(t, err, "short username")

	_, err = a.Register("alice@example.com", "short", "A", "B", 0)
	require.Error(t, err, "short password")

	_, err = a.Register("alice@example.com", "secret1", "A", "B", -100)
	require.Error(t, err, "negative starting balance")
}

func TestAuthenticate(t *testing.T) {
	a := newTestAPI(t)
	_, err := a.Register("alice@example.com", "secret1", "Alice", "Smith", 0)
	require.NoError(t, err)

	user, err := a.Authenticate("alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Username)

	_, err = a.Authenticate("alice@example.com", "wrong")
	require.ErrorIs(t, err, errInvalidCredentials)

	_, err = a.Authenticate("nobody@example.com", "secret1")
	require.ErrorIs(t, err, errInvalidCredentials)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	a := newTestAPI(t)
	user, err := a.Register("alice@example.com", "secret1", "Alice", "Smith", 0)
	require.NoError(t, err)

	raw, err := a.createAndStoreRefreshToken(user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	rt, err := a.findRefreshTokenByRaw(raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID, rt.UserID)
	assert.False(t, rt.Revoked)

	_, err = a.findRefreshTokenByRaw("not-a-token")
	require.Error(t, err)
}
