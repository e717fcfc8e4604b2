package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"paywise/models"
	"paywise/pkg/ledger"
)

var errInvalidCredentials = errors.New("invalid credentials")

// Register creates a user plus their account (seeded with startingCents) in
// one transaction: a signup either produces both rows or neither.
func (a *api) Register(username, password, firstName, lastName string, startingCents int64) (models.User, error) {
	username = ledger.NormalizeHandle(username)
	if len(username) < 3 {
		return models.User{}, fmt.Errorf("username too short (min 3)")
	}
	if len(password) < 6 { // basic password policy
		return models.User{}, fmt.Errorf("password too short (min 6)")
	}
	if startingCents < 0 {
		return models.User{}, fmt.Errorf("starting balance cannot be negative")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Username:       username,
		HashedPassword: hashedPassword,
		FirstName:      strings.TrimSpace(firstName),
		LastName:       strings.TrimSpace(lastName),
	}
	err = a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("user already exists")
			}
			return err
		}
		return tx.Create(&models.Account{UserID: user.ID, Balance: startingCents}).Error
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (a *api) Authenticate(username, password string) (models.User, error) {
	var user models.User
	if err := a.db.Where("username = ?", ledger.NormalizeHandle(username)).First(&user).Error; err != nil {
		return models.User{}, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return models.User{}, errInvalidCredentials
	}
	return user, nil
}

// issueToken mints a short-lived HS256 access token carrying the user id.
func (a *api) issueToken(user models.User, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      fmt.Sprint(user.ID),
		"username": user.Username,
		"exp":      time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(a.secret)
}

// createAndStoreRefreshToken generates a random refresh token, stores its hash with expiry and returns the raw token string
func (a *api) createAndStoreRefreshToken(userID uint) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	h := sha256.Sum256([]byte(token))
	rt := models.RefreshToken{
		UserID:    userID,
		TokenHash: hex.EncodeToString(h[:]),
		ExpiresAt: time.Now().Add(30 * 24 * time.Hour),
	}
	if err := a.db.Create(&rt).Error; err != nil {
		return "", err
	}
	return token, nil
}

// findRefreshTokenByRaw resolves a raw refresh token to its stored record.
func (a *api) findRefreshTokenByRaw(token string) (*models.RefreshToken, error) {
	h := sha256.Sum256([]byte(token))
	var rt models.RefreshToken
	if err := a.db.Where("token_hash = ?", hex.EncodeToString(h[:])).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func hashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "UNIQUE constraint") || strings.Contains(s, "already exists")
}
