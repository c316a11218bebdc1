package dbutils

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jiaming2012/skew-entropy/src/logger"
	"github.com/jiaming2012/skew-entropy/src/utils"
)

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

func (c PostgresConfig) URL() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC", c.Host, c.User, c.Password, c.DBName, c.Port)
}

// NewPostgresConfigFromEnv reads the POSTGRES_* environment variables.
func NewPostgresConfigFromEnv() (PostgresConfig, error) {
	var cfg PostgresConfig
	var err error

	if cfg.Host, err = utils.GetEnv("POSTGRES_HOST"); err != nil {
		return PostgresConfig{}, err
	}

	cfg.Port = utils.GetEnvOrDefault("POSTGRES_PORT", "5432")

	if cfg.User, err = utils.GetEnv("POSTGRES_USER"); err != nil {
		return PostgresConfig{}, err
	}

	if cfg.Password, err = utils.GetEnv("POSTGRES_PASSWORD"); err != nil {
		return PostgresConfig{}, err
	}

	if cfg.DBName, err = utils.GetEnv("POSTGRES_DB"); err != nil {
		return PostgresConfig{}, err
	}

	return cfg, nil
}

// InitPostgresWithUrl opens a connection and migrates the given models.
func InitPostgresWithUrl(url string, models ...interface{}) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		Logger: logger.NewLogrusLogger(nil).LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			Close(db)
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return db, nil
}

func InitPostgres(cfg PostgresConfig, models ...interface{}) (*gorm.DB, error) {
	return InitPostgresWithUrl(cfg.URL(), models...)
}

// Close releases the pool behind db. Nil is a no-op.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	return sqlDB.Close()
}
