// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	runCleanup     = pflag.Bool("cleanup-shares", false, "Runs a share cleanup sweep on startup")
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDrivers   = []string{"sqlite", "postgres"}
	validStorage   = []string{"local", "s3"}
)

// CleanupOnStart reports whether the --cleanup-shares flag was passed.
func CleanupOnStart() bool {
	return *runCleanup
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.allow_origin", "host_allow_origin")

	v.BindEnv("db.driver", "db_driver")
	v.BindEnv("db.path", "db_path")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("auth.session_lifetime_hours", "auth_session_lifetime_hours")
	v.BindEnv("auth.admin_user", "auth_admin_user")
	v.BindEnv("auth.admin_pass", "auth_admin_pass")

	v.BindEnv("share.default_expiry_days", "share_default_expiry_days")
	v.BindEnv("share.max_expiry_days", "share_max_expiry_days")
	v.BindEnv("share.max_views_limit", "share_max_views_limit")
	v.BindEnv("share.cleanup_interval_minutes", "share_cleanup_interval_minutes")

	v.BindEnv("storage.type", "storage_type")
	v.BindEnv("storage.local_dir", "storage_local_dir")

	v.BindEnv("upload.max_size", "upload_max_size")

	v.BindEnv("aws.access_key_id", "aws_access_key_id")
	v.BindEnv("aws.secret_access_key", "aws_secret_access_key")
	v.BindEnv("aws.region", "aws_region")
	v.BindEnv("aws.bucket", "aws_bucket")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.allow_origin", "http://localhost:5173")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.path", "data/app.db")

	v.SetDefault("auth.session_lifetime_hours", 72)

	v.SetDefault("share.default_expiry_days", 7)
	v.SetDefault("share.max_expiry_days", 30)
	v.SetDefault("share.max_views_limit", 1000)
	v.SetDefault("share.cleanup_interval_minutes", 0)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_dir", "uploads")

	v.SetDefault("upload.max_size", 50)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}
		// Running purely on env vars and defaults is fine
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDrivers, v.GetString("db.driver")) {
		return errors.New("invalid db driver provided")
	}

	if v.GetString("db.driver") == "postgres" && v.GetString("db.dsn") == "" {
		return errors.New("db.dsn is required for the postgres driver")
	}

	if v.GetInt("auth.session_lifetime_hours") <= 0 {
		return errors.New("session lifetime must be bigger than 0")
	}

	if v.GetInt("share.default_expiry_days") <= 0 {
		return errors.New("share default expiry must be bigger than 0")
	}

	if v.GetInt("share.max_expiry_days") < v.GetInt("share.default_expiry_days") {
		return errors.New("share max expiry can't be smaller than the default expiry")
	}

	if v.GetInt("share.max_views_limit") <= 0 {
		return errors.New("share max views limit must be bigger than 0")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("max upload size must be bigger than 0")
	}

	if !slices.Contains(validStorage, v.GetString("storage.type")) {
		return errors.New("invalid storage type provided")
	}

	if v.GetString("storage.type") == "s3" {
		if v.GetString("aws.access_key_id") == "" {
			return errors.New("access key id can't be empty")
		}
		if v.GetString("aws.secret_access_key") == "" {
			return errors.New("secret access key can't be empty")
		}
		if v.GetString("aws.region") == "" {
			return errors.New("region can't be empty")
		}
		if v.GetString("aws.bucket") == "" {
			return errors.New("bucket can't be empty")
		}
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}
