package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Auth
		Uploads
		CORS
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret   string        // required; startup fails without it
		TokenExpiry time.Duration // session token lifetime
		BcryptCost  int
	}
	Uploads struct {
		Dir           string
		MaxUploadSize int64  // bytes
		SweepSchedule string // cron format: "0 * * * *" = hourly
		SweepMinAge   time.Duration
	}
	CORS struct {
		AllowedOrigin string // browser SPA origin
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		DevMode                  bool // expose internal error detail in 500 bodies
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 5000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_expiry", "1h")
	v.SetDefault("bcrypt_cost", 10)

	// Upload defaults
	v.SetDefault("upload_dir", DefaultUploadDir)
	v.SetDefault("max_upload_size", 5*1024*1024)
	v.SetDefault("upload_sweep_schedule", "0 * * * *") // Hourly at :00
	v.SetDefault("upload_sweep_min_age", "1h")

	v.SetDefault("allowed_origin", "http://localhost:3000")
	v.SetDefault("dev_mode", false)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			JWTSecret:   v.GetString("JWT_SECRET"),
			TokenExpiry: v.GetDuration("TOKEN_EXPIRY"),
			BcryptCost:  v.GetInt("BCRYPT_COST"),
		},
		Uploads: Uploads{
			Dir:           v.GetString("UPLOAD_DIR"),
			MaxUploadSize: v.GetInt64("MAX_UPLOAD_SIZE"),
			SweepSchedule: v.GetString("UPLOAD_SWEEP_SCHEDULE"),
			SweepMinAge:   v.GetDuration("UPLOAD_SWEEP_MIN_AGE"),
		},
		CORS: CORS{
			AllowedOrigin: v.GetString("ALLOWED_ORIGIN"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			DevMode:                  v.GetBool("DEV_MODE"),
		},
	}
}
