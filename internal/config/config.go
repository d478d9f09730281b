package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"carshare-escrow/internal/domain"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	JWT       JWTConfig       `yaml:"jwt"`
	Platform  PlatformConfig  `yaml:"platform"`
	Wallet    WalletConfig    `yaml:"wallet"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains gRPC server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// HTTPConfig contains the read-only query API and event feed settings
type HTTPConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	Migrate  bool   `yaml:"migrate"`
}

// StorageConfig selects the engine's backing store
type StorageConfig struct {
	Type string `yaml:"type"` // "memory" or "postgres"
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	Issuer            string `yaml:"issuer"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// PlatformConfig seeds the role assignment on first start
type PlatformConfig struct {
	Owner             string `yaml:"owner"`
	FeeBps            *int64 `yaml:"fee_bps"`
	InsuranceVerifier string `yaml:"insurance_verifier"`
	Arbitrator        string `yaml:"arbitrator"`
}

// WalletConfig opens the simulated custody accounts on first start
type WalletConfig struct {
	Seed map[string]domain.Amount `yaml:"seed"` // principal -> amount in the smallest unit
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	// InProcess runs the jobs inside the server instead of cmd/cronjob.
	InProcess             bool   `yaml:"in_process"`
	ReconcileEscrow       string `yaml:"reconcile_escrow"`
	ReportOverdueBookings string `yaml:"report_overdue_bookings"`
}

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	defaultFeeBps int64 = 200
)

// Load reads configuration from a YAML file. A .env file next to the working
// directory is loaded first so its values act as environment overrides.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Config from YAML bytes, applies environment overrides and
// validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Storage
	if val := os.Getenv("STORAGE_TYPE"); val != "" {
		c.Storage.Type = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("HTTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.HTTP.Port)
	}
	if val := os.Getenv("HTTP_ALLOWED_ORIGINS"); val != "" {
		c.HTTP.AllowedOrigins = strings.Split(val, ",")
	}

	// Platform
	if val := os.Getenv("PLATFORM_OWNER"); val != "" {
		c.Platform.Owner = val
	}
	if val := os.Getenv("PLATFORM_FEE_BPS"); val != "" {
		if bps, err := strconv.ParseInt(val, 10, 64); err == nil {
			c.Platform.FeeBps = &bps
		}
	}
	if val := os.Getenv("INSURANCE_VERIFIER"); val != "" {
		c.Platform.InsuranceVerifier = val
	}
	if val := os.Getenv("ARBITRATOR"); val != "" {
		c.Platform.Arbitrator = val
	}

	// Scheduler
	if val := os.Getenv("SCHEDULER_IN_PROCESS"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Scheduler.InProcess = b
		}
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = c.Server.Port + 1
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port: %d", c.HTTP.Port)
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"*"}
	}

	// Storage validation
	if c.Storage.Type == "" {
		c.Storage.Type = StorageMemory
	}
	switch c.Storage.Type {
	case StorageMemory:
	case StoragePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	default:
		return fmt.Errorf("unknown storage type: %q", c.Storage.Type)
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "carshare-escrow"
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Platform validation
	if _, err := domain.ParsePrincipal(c.Platform.Owner); err != nil {
		return fmt.Errorf("platform owner: %w", err)
	}
	if c.Platform.FeeBps == nil {
		bps := defaultFeeBps
		c.Platform.FeeBps = &bps
	}
	if *c.Platform.FeeBps < 0 || *c.Platform.FeeBps > domain.MaxPlatformFeeBps {
		return fmt.Errorf("platform fee_bps must be within [0, %d]: %d", domain.MaxPlatformFeeBps, *c.Platform.FeeBps)
	}
	for name, p := range map[string]string{"insurance_verifier": c.Platform.InsuranceVerifier, "arbitrator": c.Platform.Arbitrator} {
		if p == "" {
			continue
		}
		if _, err := domain.ParsePrincipal(p); err != nil {
			return fmt.Errorf("platform %s: %w", name, err)
		}
	}

	// Wallet validation
	for p, amount := range c.Wallet.Seed {
		if _, err := domain.ParsePrincipal(p); err != nil {
			return fmt.Errorf("wallet seed %q: %w", p, err)
		}
		if amount.Sign() <= 0 {
			return fmt.Errorf("wallet seed %q: amount must be positive", p)
		}
	}

	// Scheduler defaults
	if c.Scheduler.ReconcileEscrow == "" {
		c.Scheduler.ReconcileEscrow = "0 */15 * * * *" // every 15 minutes
	}
	if c.Scheduler.ReportOverdueBookings == "" {
		c.Scheduler.ReportOverdueBookings = "0 0 * * * *" // hourly
	}

	return nil
}

// Roles returns the initial role assignment described by the platform section.
// Validate must have succeeded.
func (c *Config) Roles() domain.RoleAssignment {
	roles := domain.RoleAssignment{
		PlatformOwner:  domain.MustPrincipal(c.Platform.Owner),
		PlatformFeeBps: *c.Platform.FeeBps,
	}
	if c.Platform.InsuranceVerifier != "" {
		roles.InsuranceVerifier = domain.MustPrincipal(c.Platform.InsuranceVerifier)
	}
	if c.Platform.Arbitrator != "" {
		roles.Arbitrator = domain.MustPrincipal(c.Platform.Arbitrator)
	}
	return roles
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the gRPC server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetHTTPAddress returns the query API address
func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}
