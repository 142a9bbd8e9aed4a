// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for our application
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cart     CartConfig
	JWT      JWTConfig
	Security SecurityConfig
	Receipt  ReceiptConfig
	Logging  LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// StoreConfig selects the remote row store backing products and orders
type StoreConfig struct {
	Driver string // postgres or memory
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SeedProducts bool
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// CartConfig controls how session carts are persisted
type CartConfig struct {
	KeyPrefix     string
	TTL           time.Duration
	SessionCookie string
	SessionMaxAge int
	SecureCookie  bool
}

// JWTConfig contains JWT token configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	BcryptCost         int
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	TrustedProxies     []string
	AdminEmails        []string // Accounts registered with these emails get admin rights
}

// ReceiptConfig holds the shop details printed on order receipts
type ReceiptConfig struct {
	ShopName    string
	ShopAddress string
	ShopEmail   string
	ShopPhone   string
	Currency    string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Storefront Backend"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
		},
		Server: ServerConfig{
			Port:           getEnv("APP_PORT", "8080"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", "postgres"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "storefront_db"),
			User:         getEnv("DB_USER", "storefront_user"),
			Password:     getEnv("DB_PASSWORD", "storefront_password"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
			SeedProducts: getEnvAsBool("DB_SEED_PRODUCTS", true),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		Cart: CartConfig{
			KeyPrefix:     getEnv("CART_KEY_PREFIX", "cart:session:"),
			TTL:           getEnvAsDuration("CART_TTL", 30*24*time.Hour),
			SessionCookie: getEnv("CART_SESSION_COOKIE", "session_id"),
			SessionMaxAge: getEnvAsInt("CART_SESSION_MAX_AGE", 30*86400),
			SecureCookie:  getEnvAsBool("CART_SECURE_COOKIE", false),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-super-secret-jwt-key-change-in-production"),
			AccessTokenExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRE", 24*time.Hour),
		},
		Security: SecurityConfig{
			BcryptCost:         getEnvAsInt("BCRYPT_COST", 12),
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
			AdminEmails:        getEnvAsSlice("ADMIN_EMAILS", []string{}),
		},
		Receipt: ReceiptConfig{
			ShopName:    getEnv("SHOP_NAME", "Brew & Bean Coffee"),
			ShopAddress: getEnv("SHOP_ADDRESS", ""),
			ShopEmail:   getEnv("SHOP_EMAIL", "hello@example.com"),
			ShopPhone:   getEnv("SHOP_PHONE", ""),
			Currency:    getEnv("SHOP_CURRENCY", "PHP"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "debug"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate JWT secret
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	switch c.Store.Driver {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("DB_USER is required")
		}
	case "memory":
	default:
		return fmt.Errorf("STORE_DRIVER must be postgres or memory, got %q", c.Store.Driver)
	}

	// Validate Redis configuration
	if c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}

	if c.Cart.KeyPrefix == "" {
		return fmt.Errorf("CART_KEY_PREFIX is required")
	}

	// Validate server port
	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// CartKey returns the snapshot key for a session's cart
func (c *Config) CartKey(sessionID string) string {
	return c.Cart.KeyPrefix + sessionID
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
