package main

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"paywise/models"
)

// openDB connects to Postgres and (optionally) migrates the schema. The
// returned handle is passed into each component at construction; nothing in
// the repo holds a package-level connection.
func openDB(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.AutoMigrate {
		if err := migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// migrate runs AutoMigrate per model so a failure on one table surfaces with
// its name attached.
func migrate(db *gorm.DB) error {
	for _, model := range []any{
		&models.User{},
		&models.Account{},
		&models.Transaction{},
		&models.Budget{},
		&models.Goal{},
		&models.Payee{},
		&models.RefreshToken{},
	} {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %T: %w", model, err)
		}
	}
	return nil
}
