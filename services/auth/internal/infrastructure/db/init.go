package db

import (
	"fmt"
	"time"

	redigo "github.com/gomodule/redigo/redis"
	"github.com/redis/go-redis/v9"
	"github.com/wekeepgrowing/semo-starter/pkg/messaging"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/config"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/crypto"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/infrastructure/mail"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Infrastructure holds every external connection the service uses.
type Infrastructure struct {
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	// SessionPool backs the gorilla session store.
	SessionPool *redigo.Pool
	Messaging   messaging.RedisClient
	Mailer      *mail.SMTPMailer
	Encryption  crypto.EncryptionService
}

// NewInfrastructure connects to PostgreSQL and Redis and builds the mailer
// and encryption service.
func NewInfrastructure(cfg *config.Config) (*Infrastructure, error) {
	logger := cfg.Logger
	infrastructure := &Infrastructure{Logger: logger}

	dbConfig := Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Name:            cfg.Database.Name,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
		SSLMode:         cfg.Database.SSLMode,
	}

	var err error
	infrastructure.DB, err = NewPostgresDB(dbConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := Migrate(infrastructure.DB, logger); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	redisConfig := RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	infrastructure.RedisClient, err = NewRedisClient(redisConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	infrastructure.SessionPool = NewSessionPool(redisConfig)

	// Subscriptions hold their connection, so pub/sub gets its own client.
	infrastructure.Messaging, err = messaging.NewRedisClient(redisConfig.Addr(), redisConfig.Password, redisConfig.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect messaging: %w", err)
	}
	infrastructure.Mailer = mail.NewSMTPMailer(logger)

	infrastructure.Encryption, err = crypto.NewAESEncryptionService(cfg.Crypto.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize encryption: %w", err)
	}

	logger.Info("Infrastructure initialized",
		zap.String("database", "PostgreSQL"),
		zap.String("redis", redisConfig.Addr()),
		zap.String("email", "SMTP"),
	)

	return infrastructure, nil
}

// NewSessionPool builds the redigo pool used by the gorilla session store.
func NewSessionPool(cfg RedisConfig) *redigo.Pool {
	return &redigo.Pool{
		MaxIdle:     10,
		MaxActive:   0,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redigo.Conn, error) {
			var options []redigo.DialOption
			if cfg.Password != "" {
				options = append(options, redigo.DialPassword(cfg.Password))
			}
			options = append(options, redigo.DialDatabase(cfg.DB))
			return redigo.Dial("tcp", cfg.Addr(), options...)
		},
	}
}

// Close releases every connection.
func (i *Infrastructure) Close() error {
	sqlDB, err := i.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if err := i.SessionPool.Close(); err != nil {
		return fmt.Errorf("failed to close session pool: %w", err)
	}

	if err := i.Messaging.Close(); err != nil {
		return fmt.Errorf("failed to close messaging: %w", err)
	}

	if err := i.RedisClient.Close(); err != nil {
		return fmt.Errorf("failed to close redis: %w", err)
	}

	i.Logger.Info("Infrastructure connections closed")
	return nil
}
