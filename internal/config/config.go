package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration for the gateway.
type Config struct {
	HTTPPort  string
	JWTSecret []byte
	Admin     AdminConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Live      LiveConfig
	Telemetry TelemetryConfig
	RateLimit RateLimitConfig
}

// AdminConfig holds credentials for the admin surface. The password hash is
// a bcrypt hash; when it is empty the admin endpoints are disabled.
type AdminConfig struct {
	User         string
	PasswordHash string
	TokenTTL     time.Duration
}

// DatabaseConfig holds the optional Postgres catalog source settings. An
// empty URL means the built-in catalog is used.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Address      string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LiveConfig controls how the live-session URL is resolved for clients.
// Resolution order: explicit URL override, then a wss:// URL derived from
// the public deployment host, then a same-origin default path.
type LiveConfig struct {
	URLOverride    string
	PublicHost     string
	DefaultAliasID string
}

// TelemetryConfig holds configuration for the telemetry sink and its worker
type TelemetryConfig struct {
	FilePathTemplate string
	MaxSize          int64
	MaxFiles         int
	BufferSize       int
	FlushInterval    time.Duration

	// S3 batch upload of redacted events, disabled by default
	S3Enabled bool
	S3Bucket  string
	S3Region  string
	S3Prefix  string
	PodName   string
}

// RateLimitConfig guards the log ingestion endpoint
type RateLimitConfig struct {
	Enabled   bool
	PerMinute int
}

func getEnvInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getEnvInt64(key string, defaultValue int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	intVal, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return defaultValue
	}
	return intVal
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getEnvString(key string, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// Load reads configuration from environment variables. Everything is
// optional with fixed defaults; production deployments are expected to
// override the defaults that matter (JWT secret, alias resolution
// references, live URL).
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:  getEnvString("HTTP_PORT", "8080"),
		JWTSecret: []byte(getEnvString("JWT_SECRET", "supersecretkey")),
		Admin: AdminConfig{
			User:         getEnvString("EBURON_ADMIN_USER", "admin"),
			PasswordHash: getEnvString("EBURON_ADMIN_PASSWORD_HASH", ""),
			TokenTTL:     getEnvDuration("EBURON_ADMIN_TOKEN_TTL", 15*time.Minute),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute),
		},
		Redis: RedisConfig{
			Address:      getEnvString("REDIS_ADDRESS", ""),
			Password:     getEnvString("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Live: LiveConfig{
			URLOverride:    getEnvString("EBURON_LIVE_WS_URL", ""),
			PublicHost:     getEnvString("EBURON_PUBLIC_HOST", ""),
			DefaultAliasID: getEnvString("EBURON_DEFAULT_ALIAS_ID", "echo-v1.0"),
		},
		Telemetry: TelemetryConfig{
			FilePathTemplate: getEnvString("TELEMETRY_FILE_PATH_TEMPLATE", "/var/log/alias-gateway/events-%s.jsonl"),
			MaxSize:          getEnvInt64("TELEMETRY_MAX_SIZE", 10_485_760),              // default 10 MB
			MaxFiles:         getEnvInt("TELEMETRY_MAX_FILES", 5),                        // default 5
			BufferSize:       getEnvInt("TELEMETRY_BUFFER_SIZE", 1000),                   // default 1000 queued events
			FlushInterval:    getEnvDuration("TELEMETRY_FLUSH_INTERVAL", 60*time.Second), // default 60 seconds

			S3Enabled: getEnvString("TELEMETRY_S3_ENABLED", "false") == "true",
			S3Bucket:  getEnvString("TELEMETRY_S3_BUCKET", ""),
			S3Region:  getEnvString("TELEMETRY_S3_REGION", "us-east-1"),
			S3Prefix:  getEnvString("TELEMETRY_S3_PREFIX", "telemetry/"),
			PodName:   getEnvString("POD_NAME", "gateway-0"),
		},
		RateLimit: RateLimitConfig{
			Enabled:   getEnvString("LOG_RATE_LIMIT_ENABLED", "false") == "true",
			PerMinute: getEnvInt("LOG_RATE_LIMIT_PER_MINUTE", 600),
		},
	}

	return cfg, nil
}
