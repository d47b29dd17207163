package config

import (
	"time"

	"github.com/wekeepgrowing/semo-starter/pkg/config"
	"github.com/wekeepgrowing/semo-starter/pkg/logger"
	"go.uber.org/zap"
)

// Config is the auth service configuration.
type Config struct {
	Service struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
		// BaseURL is used in emailed links when the stored site url is empty.
		BaseURL string `yaml:"base_url"`
	} `yaml:"service"`

	Server struct {
		HTTP struct {
			Port    string `yaml:"port"`
			Timeout int    `yaml:"timeout"`
			Debug   bool   `yaml:"debug"`
		} `yaml:"http"`

		GRPC struct {
			Port    string `yaml:"port"`
			Timeout int    `yaml:"timeout"`
		} `yaml:"grpc"`
	} `yaml:"server"`

	Database struct {
		Driver          string `yaml:"driver"`
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		Name            string `yaml:"name"`
		User            string `yaml:"user"`
		Password        string `yaml:"password"`
		SSLMode         string `yaml:"ssl_mode"`
		MaxOpenConns    int    `yaml:"max_open_conns"`
		MaxIdleConns    int    `yaml:"max_idle_conns"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime"`
		AutoMigrate     bool   `yaml:"auto_migrate"`
	} `yaml:"database"`

	Redis struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	JWT struct {
		Secret string `yaml:"secret"`
		// AccessTokenExpiry is the identity token lifetime in minutes.
		AccessTokenExpiry int `yaml:"access_token_expiry"`
	} `yaml:"jwt"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`

	Email struct {
		SenderEmail string `yaml:"sender_email"`
	} `yaml:"email"`

	OAuth struct {
		Google struct {
			ClientID     string `yaml:"client_id"`
			ClientSecret string `yaml:"client_secret"`
			RedirectURL  string `yaml:"redirect_url"`
		} `yaml:"google"`
	} `yaml:"oauth"`

	Auth struct {
		PasswordMinLength             int           `yaml:"password_min_length"`
		HashCost                      int           `yaml:"hash_cost"`
		RequireVerifiedEmailForSignin bool          `yaml:"require_verified_email_for_signin"`
		TokenTTL                      time.Duration `yaml:"token_ttl"`
		MaxPendingTokens              int           `yaml:"max_pending_tokens"`
		RegistrationWindow            time.Duration `yaml:"registration_window"`
	} `yaml:"auth"`

	Session struct {
		ExtendThreshold float64 `yaml:"extend_threshold"`
		CookieSecure    bool    `yaml:"cookie_secure"`
		CookieDomain    string  `yaml:"cookie_domain"`
		StoreSecret     string  `yaml:"store_secret"`
		StoreKeyPrefix  string  `yaml:"store_key_prefix"`
	} `yaml:"session"`

	Crypto struct {
		// EncryptionKey is a 64 character hex string.
		EncryptionKey string `yaml:"encryption_key"`
	} `yaml:"crypto"`

	Cache struct {
		ConfigTTL     time.Duration `yaml:"config_ttl"`
		ConfigMemoTTL time.Duration `yaml:"config_memo_ttl"`
	} `yaml:"cache"`

	// Frontend is the page surface served behind the access gate. ProxyURL
	// wins over StaticDir; with neither set only the API is served.
	Frontend struct {
		ProxyURL  string `yaml:"proxy_url"`
		StaticDir string `yaml:"static_dir"`
	} `yaml:"frontend"`

	RateLimit struct {
		Rate      float64       `yaml:"rate"`
		Burst     int           `yaml:"burst"`
		ExpiresIn time.Duration `yaml:"expires_in"`
	} `yaml:"rate_limit"`

	Logger *zap.Logger
}

var defaults = map[string]interface{}{
	"service.name":                           "auth",
	"service.base_url":                       "http://localhost:3000",
	"server.port":                            "8080",
	"server.timeout":                         30,
	"server.grpc.port":                       "9090",
	"database.driver":                        "postgres",
	"database.port":                          5432,
	"database.ssl_mode":                      "disable",
	"database.max_open_conns":                20,
	"database.max_idle_conns":                5,
	"database.conn_max_lifetime":             300,
	"redis.port":                             6379,
	"jwt.access_token_expiry":                60 * 24 * 30,
	"log.level":                              "info",
	"log.format":                             "json",
	"log.output":                             "stdout",
	"auth.password_min_length":               8,
	"auth.hash_cost":                         10,
	"auth.require_verified_email_for_signin": false,
	"auth.token_ttl":                         "15m",
	"auth.max_pending_tokens":                3,
	"auth.registration_window":               "720h",
	"session.extend_threshold":               0.5,
	"session.store_key_prefix":               "auth_session_",
	"cache.config_ttl":                       "1h",
	"cache.config_memo_ttl":                  "5s",
	"rate_limit.rate":                        0.2,
	"rate_limit.burst":                       5,
	"rate_limit.expires_in":                  "3m",
}

// Load reads the auth configuration and builds the process logger.
func Load() (*Config, error) {
	cfg, err := config.LoadWithOptions("auth", config.Options{Defaults: defaults})
	if err != nil {
		return nil, err
	}

	appConfig := FromSource(cfg)

	appConfig.Logger, err = logger.NewZapLogger(logger.Config{
		Level:       appConfig.Log.Level,
		Format:      appConfig.Log.Format,
		Output:      appConfig.Log.Output,
		Development: appConfig.Server.HTTP.Debug,
	})
	if err != nil {
		return nil, err
	}

	return appConfig, nil
}

// FromSource maps configuration keys onto Config. Logger is left nil.
func FromSource(cfg config.Config) *Config {
	appConfig := &Config{}

	appConfig.Service.Name = cfg.GetString("service.name")
	appConfig.Service.Version = cfg.GetString("service.version")
	appConfig.Service.BaseURL = cfg.GetString("service.base_url")

	appConfig.Server.HTTP.Port = cfg.GetString("server.port")
	appConfig.Server.HTTP.Timeout = cfg.GetInt("server.timeout")
	appConfig.Server.HTTP.Debug = cfg.GetBool("server.debug")
	appConfig.Server.GRPC.Port = cfg.GetString("server.grpc.port")
	appConfig.Server.GRPC.Timeout = cfg.GetInt("server.grpc.timeout")

	appConfig.Database.Driver = cfg.GetString("database.driver")
	appConfig.Database.Host = cfg.GetString("database.host")
	appConfig.Database.Port = cfg.GetInt("database.port")
	appConfig.Database.Name = cfg.GetString("database.name")
	appConfig.Database.User = cfg.GetString("database.user")
	appConfig.Database.Password = cfg.GetString("database.password")
	appConfig.Database.SSLMode = cfg.GetString("database.ssl_mode")
	appConfig.Database.MaxOpenConns = cfg.GetInt("database.max_open_conns")
	appConfig.Database.MaxIdleConns = cfg.GetInt("database.max_idle_conns")
	appConfig.Database.ConnMaxLifetime = cfg.GetInt("database.conn_max_lifetime")
	appConfig.Database.AutoMigrate = cfg.GetBool("database.auto_migrate")

	appConfig.Redis.Host = cfg.GetString("redis.host")
	appConfig.Redis.Port = cfg.GetInt("redis.port")
	appConfig.Redis.Password = cfg.GetString("redis.password")
	appConfig.Redis.DB = cfg.GetInt("redis.db")

	appConfig.JWT.Secret = cfg.GetString("jwt.secret")
	appConfig.JWT.AccessTokenExpiry = cfg.GetInt("jwt.access_token_expiry")

	appConfig.Log.Level = cfg.GetString("log.level")
	appConfig.Log.Format = cfg.GetString("log.format")
	appConfig.Log.Output = cfg.GetString("log.output")

	appConfig.Email.SenderEmail = cfg.GetString("email.sender_email")

	appConfig.OAuth.Google.ClientID = cfg.GetString("oauth.google.client_id")
	appConfig.OAuth.Google.ClientSecret = cfg.GetString("oauth.google.client_secret")
	appConfig.OAuth.Google.RedirectURL = cfg.GetString("oauth.google.redirect_url")

	appConfig.Auth.PasswordMinLength = cfg.GetInt("auth.password_min_length")
	appConfig.Auth.HashCost = cfg.GetInt("auth.hash_cost")
	appConfig.Auth.RequireVerifiedEmailForSignin = cfg.GetBool("auth.require_verified_email_for_signin")
	appConfig.Auth.TokenTTL = cfg.GetDuration("auth.token_ttl")
	appConfig.Auth.MaxPendingTokens = cfg.GetInt("auth.max_pending_tokens")
	appConfig.Auth.RegistrationWindow = cfg.GetDuration("auth.registration_window")

	appConfig.Session.ExtendThreshold = cfg.GetFloat64("session.extend_threshold")
	appConfig.Session.CookieSecure = cfg.GetBool("session.cookie_secure")
	appConfig.Session.CookieDomain = cfg.GetString("session.cookie_domain")
	appConfig.Session.StoreSecret = cfg.GetString("session.store_secret")
	appConfig.Session.StoreKeyPrefix = cfg.GetString("session.store_key_prefix")

	appConfig.Crypto.EncryptionKey = cfg.GetString("crypto.encryption_key")

	appConfig.Cache.ConfigTTL = cfg.GetDuration("cache.config_ttl")
	appConfig.Cache.ConfigMemoTTL = cfg.GetDuration("cache.config_memo_ttl")

	appConfig.Frontend.ProxyURL = cfg.GetString("frontend.proxy_url")
	appConfig.Frontend.StaticDir = cfg.GetString("frontend.static_dir")

	appConfig.RateLimit.Rate = cfg.GetFloat64("rate_limit.rate")
	appConfig.RateLimit.Burst = cfg.GetInt("rate_limit.burst")
	appConfig.RateLimit.ExpiresIn = cfg.GetDuration("rate_limit.expires_in")

	return appConfig
}
