package config

import (
	"errors"
	"log"
	"os"

	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	App      AppConfig      `mapstructure:"app"`
	OSS      OSSConfig      `mapstructure:"oss"`
	Download DownloadConfig `mapstructure:"download"`
	Currency CurrencyConfig `mapstructure:"currency"`
	PayPal   PayPalConfig   `mapstructure:"paypal"`
	Stripe   StripeConfig   `mapstructure:"stripe"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
	// BaseURL overrides forwarded-header detection when set. Used for
	// gateway return URLs and signed download links.
	BaseURL string `mapstructure:"base_url"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int64  `mapstructure:"expire"` // hours
}

type AppConfig struct {
	Env   string `mapstructure:"env"`
	Debug bool   `mapstructure:"debug"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
}

type DownloadConfig struct {
	// HMACSecret signs download links. Independent from the JWT secret
	// so rotating one does not invalidate the other.
	HMACSecret string `mapstructure:"hmac_secret"`
	TTLHours   int    `mapstructure:"ttl_hours"`
}

type CurrencyConfig struct {
	// USDRate is the fixed conversion rate in store currency units per
	// 1 USD, used when a gateway does not support the order currency.
	USDRate int64 `mapstructure:"usd_rate"`
}

type PayPalConfig struct {
	ClientID string `mapstructure:"client_id"`
	Secret   string `mapstructure:"secret"`
	APIBase  string `mapstructure:"api_base"` // sandbox vs live
}

type StripeConfig struct {
	SecretKey string `mapstructure:"secret_key"`
	APIBase   string `mapstructure:"api_base"`
}

var GlobalConfig Config

// Validate rejects configurations that cannot run safely.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" || c.JWT.Secret == "your_super_secret_key" {
		return errors.New("please set a secure JWT secret in production")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT secret should be at least 32 characters")
	}
	if c.Download.HMACSecret == "" {
		return errors.New("download HMAC secret is required")
	}
	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return errors.New("database configuration is incomplete")
	}
	if c.Redis.Addr == "" {
		return errors.New("redis address is required")
	}
	if c.Currency.USDRate <= 0 {
		return errors.New("currency usd_rate must be positive")
	}
	return nil
}

// LoadConfig reads configs/config[.env].yaml plus environment overrides.
func LoadConfig() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	configName := "config"
	if env != "" && env != "dev" {
		configName = "config." + env
	}

	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("jwt.expire", 24)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("app.env", "dev")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("download.ttl_hours", 24)
	viper.SetDefault("currency.usd_rate", 15500)
	viper.SetDefault("paypal.api_base", "https://api-m.sandbox.paypal.com")
	viper.SetDefault("stripe.api_base", "https://api.stripe.com")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Config file not found, using defaults or env vars: %v", err)
	}

	viper.AutomaticEnv()

	if err := viper.Unmarshal(&GlobalConfig); err != nil {
		log.Fatalf("Unable to decode into struct: %v", err)
	}

	// Explicit env overrides for values viper may miss and for secrets
	// that should never live in the yaml.
	if host := os.Getenv("DB_HOST"); host != "" {
		GlobalConfig.Database.Host = host
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		GlobalConfig.Redis.Addr = redisAddr
	}
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		GlobalConfig.JWT.Secret = jwtSecret
	}
	if hmacSecret := os.Getenv("DOWNLOAD_HMAC_SECRET"); hmacSecret != "" {
		GlobalConfig.Download.HMACSecret = hmacSecret
	}
	if id := os.Getenv("PAYPAL_CLIENT_ID"); id != "" {
		GlobalConfig.PayPal.ClientID = id
	}
	if secret := os.Getenv("PAYPAL_SECRET"); secret != "" {
		GlobalConfig.PayPal.Secret = secret
	}
	if key := os.Getenv("STRIPE_SECRET_KEY"); key != "" {
		GlobalConfig.Stripe.SecretKey = key
	}
	if base := os.Getenv("BASE_URL"); base != "" {
		GlobalConfig.Server.BaseURL = base
	}

	if err := GlobalConfig.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	log.Printf("Configuration loaded and validated successfully. Environment: %s", GlobalConfig.App.Env)
}
