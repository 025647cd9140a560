package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendBadger   = "badger"
)

const DefaultKeyPrefix = "contest:"

type Config struct {
	HTTPPort string `yaml:"httpPort" envconfig:"HTTP_PORT"`

	StoreBackend   string `yaml:"storeBackend"   envconfig:"STORE_BACKEND"`
	StoreKeyPrefix string `yaml:"storeKeyPrefix" envconfig:"STORE_KEY_PREFIX"`

	SQLitePath string `yaml:"sqlitePath" envconfig:"SQLITE_PATH"`

	DatabaseUser     string `yaml:"databaseUser"     envconfig:"DB_USER"`
	DatabasePassword string `yaml:"databasePassword" envconfig:"DB_PASSWORD"`
	DatabaseHost     string `yaml:"databaseHost"     envconfig:"DB_HOST"`
	DatabaseName     string `yaml:"databaseName"     envconfig:"DB_NAME"`
	SSLMode          string `yaml:"sslMode"          envconfig:"SSL_MODE"`

	RedisAddr     string `yaml:"redisAddr"     envconfig:"REDIS_ADDR"`
	RedisPassword string `yaml:"redisPassword" envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redisDB"       envconfig:"REDIS_DB"`

	BadgerDir string `yaml:"badgerDir" envconfig:"BADGER_DIR"`

	PaletteFile   string `yaml:"paletteFile"   envconfig:"PALETTE_FILE"`
	ScoringMetric string `yaml:"scoringMetric" envconfig:"SCORING_METRIC"`

	AdminPasswordHash string   `yaml:"adminPasswordHash" envconfig:"ADMIN_PASSWORD_HASH"`
	JwtSecret         string   `yaml:"jwtSecret"         envconfig:"JWT_SECRET"`
	JwtAccessDuration int      `yaml:"jwtAccessDuration" envconfig:"JWT_ACCESS_DURATION"` // seconds
	JwtDomain         string   `yaml:"jwtDomain"         envconfig:"JWT_DOMAIN"`
	AllowedOrigins    []string `yaml:"allowedOrigins"    envconfig:"ALLOWED_ORIGINS"`

	BackupDir      string        `yaml:"backupDir"      envconfig:"BACKUP_DIR"`
	BackupInterval time.Duration `yaml:"backupInterval" envconfig:"BACKUP_INTERVAL"`

	DevMode bool `yaml:"devMode" envconfig:"DEV_MODE"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		HTTPPort:          ":8080",
		StoreBackend:      BackendSQLite,
		StoreKeyPrefix:    DefaultKeyPrefix,
		SQLitePath:        "contest.db",
		DatabaseUser:      "postgres",
		DatabaseHost:      "localhost",
		DatabaseName:      "colorcontest",
		SSLMode:           "disable",
		RedisAddr:         "localhost:6379",
		BadgerDir:         ".contest",
		ScoringMetric:     "oklab",
		JwtSecret:         "your-secret-key-change-this",
		JwtAccessDuration: 3600,
		AllowedOrigins:    []string{"http://localhost:3000", "http://localhost:5173"},
		DevMode:           true,
	}
}

// searchPaths are checked in order when no config file is given
var searchPaths = []string{
	"contest.yaml",
	filepath.Join("/etc", "color-contest", "contest.yaml"),
}

// Load builds the configuration from defaults, an optional YAML file, a
// .env file and the environment, each layer overriding the previous one.
func Load(configFile string) (Config, error) {
	cfg := Default()

	if configFile == "" {
		for _, candidate := range searchPaths {
			if _, err := os.Stat(candidate); err == nil {
				configFile = candidate
				break
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return Config{}, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Load .env file if it exists
	_ = godotenv.Load()

	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("error processing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the rest of the program cannot act on
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendSQLite, BackendPostgres, BackendRedis, BackendBadger:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	switch c.ScoringMetric {
	case "", "oklab", "ciede2000":
	default:
		return fmt.Errorf("unknown scoring metric %q", c.ScoringMetric)
	}
	if c.JwtAccessDuration <= 0 {
		return errors.New("JWT_ACCESS_DURATION must be positive")
	}
	if c.BackupInterval < 0 {
		return errors.New("BACKUP_INTERVAL must not be negative")
	}
	if c.BackupInterval > 0 && c.BackupDir == "" {
		return errors.New("BACKUP_DIR is required when BACKUP_INTERVAL is set")
	}
	return nil
}

// AccessDuration is the admin token lifetime
func (c Config) AccessDuration() time.Duration {
	return time.Duration(c.JwtAccessDuration) * time.Second
}
