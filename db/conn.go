// Package db opens the database named by the config and migrates the schema
package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/HaiTang-8/content-hub/internal/model"
	"github.com/HaiTang-8/content-hub/pkg/security"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func New() (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch viper.GetString("db.driver") {
	case "postgres":
		dialector = postgres.Open(viper.GetString("db.dsn"))
	default:
		path := viper.GetString("db.path")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory, %w", err)
		}
		dialector = sqlite.Open(path)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Session{},
		&model.APIKey{},
		&model.File{},
		&model.Share{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	if err := seedAdmin(db); err != nil {
		return nil, err
	}

	return db, nil
}

// seedAdmin creates a default admin account on first boot so the instance
// isn't born unusable. Credentials come from auth.admin_user/auth.admin_pass.
func seedAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count admins, %w", err)
	}
	if count > 0 {
		return nil
	}

	username := viper.GetString("auth.admin_user")
	if username == "" {
		username = "admin"
	}
	password := viper.GetString("auth.admin_pass")
	if password == "" {
		password = "admin123"
	}

	hash, err := security.New().Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password, %w", err)
	}

	admin := &model.User{Username: username, PasswordHash: hash, Role: model.RoleAdmin}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin user, %w", err)
	}

	zap.L().Warn("Seeded default admin account, change its password",
		zap.String("username", username))
	return nil
}
