package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Port     int
	MaxConns int32
	Migrate  bool
}

type KafkaConfig struct {
	Brokers       []string
	Topic         string
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
	TLS           bool
}

// Enabled reports whether events go to Kafka rather than the log.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Enabled reports whether risk answers are cached.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

type RiskGatewayConfig struct {
	URL        string
	Timeout    time.Duration
	MaxRetries int
	// Stub replaces the remote service with a deterministic in-process one.
	Stub bool
}

type JWTConfig struct {
	Issuer         string
	Secret         string
	PrivateKeyFile string
	PrivateKey     string
	Expiration     time.Duration
}

// HTTPServerConfig bounds the REST listener. TLS is served when both files
// are set.
type HTTPServerConfig struct {
	TLSCertFile  string
	TLSKeyFile   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// TLSEnabled reports whether the REST listener serves HTTPS.
func (h HTTPServerConfig) TLSEnabled() bool { return h.TLSCertFile != "" && h.TLSKeyFile != "" }

type GRPCConfig struct {
	Port        int
	TLSCertFile string
	TLSKeyFile  string
	Reflection  bool
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type RatesConfig struct {
	Low    decimal.Decimal
	Medium decimal.Decimal
	High   decimal.Decimal
}

type Config struct {
	ServiceName   string
	Environment   string
	LogLevel      string
	LogFormat     string
	OTLPEndpoint  string
	TraceSampling float64
	HTTPPort      int
	HTTP          HTTPServerConfig
	GRPC          GRPCConfig
	DB            DatabaseConfig
	Kafka         KafkaConfig
	Redis         RedisConfig
	RiskGateway   RiskGatewayConfig
	JWT           JWTConfig
	RateLimit     RateLimitConfig
	Rates         RatesConfig
}

// Load reads configuration from the environment. A .env file in the working
// directory or the module root is applied first; variables already set in
// the environment win.
func Load() Config {
	loadEnvFile()

	return Config{
		ServiceName:   getEnv("SERVICE_NAME", "loan-origination"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		OTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		TraceSampling: getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1.0),
		HTTPPort:      getEnvInt("HTTP_PORT", 8080),
		HTTP: HTTPServerConfig{
			TLSCertFile:  getEnv("HTTP_TLS_CERT_FILE", ""),
			TLSKeyFile:   getEnv("HTTP_TLS_KEY_FILE", ""),
			ReadTimeout:  getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvDuration("HTTP_IDLE_TIMEOUT", 2*time.Minute),
		},
		GRPC: GRPCConfig{
			Port:        getEnvInt("GRPC_PORT", 9090),
			TLSCertFile: getEnv("GRPC_TLS_CERT_FILE", ""),
			TLSKeyFile:  getEnv("GRPC_TLS_KEY_FILE", ""),
			Reflection:  getEnvBool("GRPC_REFLECTION", false),
		},
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "origination"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "loan_origination"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
			Migrate:  getEnvBool("DB_MIGRATE", true),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvList("KAFKA_BROKERS"),
			Topic:         getEnv("KAFKA_TOPIC", "origination-events"),
			SASLMechanism: getEnv("KAFKA_SASL_MECHANISM", ""),
			SASLUsername:  getEnv("KAFKA_SASL_USERNAME", ""),
			SASLPassword:  getEnv("KAFKA_SASL_PASSWORD", ""),
			TLS:           getEnvBool("KAFKA_TLS", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("RISK_CACHE_TTL", 10*time.Minute),
		},
		RiskGateway: RiskGatewayConfig{
			URL:        strings.TrimRight(getEnv("RISK_GATEWAY_URL", ""), "/"),
			Timeout:    getEnvDuration("RISK_GATEWAY_TIMEOUT", 5*time.Second),
			MaxRetries: getEnvInt("RISK_GATEWAY_MAX_RETRIES", 2),
			Stub:       getEnvBool("RISK_GATEWAY_STUB", false),
		},
		JWT: JWTConfig{
			Issuer:         getEnv("JWT_ISSUER", "loan-origination"),
			Secret:         getEnv("JWT_SECRET", ""),
			PrivateKey:     getEnv("JWT_PRIVATE_KEY", ""),
			PrivateKeyFile: getEnv("JWT_PRIVATE_KEY_FILE", ""),
			Expiration:     getEnvDuration("JWT_EXPIRATION", 24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvFloat("PUBLIC_RATE_LIMIT_RPS", 5),
			Burst:             getEnvInt("PUBLIC_RATE_LIMIT_BURST", 10),
		},
		Rates: RatesConfig{
			Low:    getEnvDecimal("RATE_TIER_LOW", decimal.RequireFromString("7.5")),
			Medium: getEnvDecimal("RATE_TIER_MEDIUM", decimal.RequireFromString("8.5")),
			High:   getEnvDecimal("RATE_TIER_HIGH", decimal.RequireFromString("9.5")),
		},
	}
}

// Validate reports every missing or inconsistent setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.DB.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD environment variable is required"))
	}
	if c.JWT.Secret == "" && c.JWT.PrivateKey == "" && c.JWT.PrivateKeyFile == "" {
		errs = append(errs, errors.New("one of JWT_SECRET, JWT_PRIVATE_KEY or JWT_PRIVATE_KEY_FILE is required"))
	}
	if c.RiskGateway.URL == "" && !c.RiskGateway.Stub {
		errs = append(errs, errors.New("RISK_GATEWAY_URL is required unless RISK_GATEWAY_STUB=true"))
	}
	if c.RiskGateway.Timeout <= 0 {
		errs = append(errs, errors.New("RISK_GATEWAY_TIMEOUT must be positive"))
	}
	if c.RiskGateway.MaxRetries < 0 {
		errs = append(errs, errors.New("RISK_GATEWAY_MAX_RETRIES must not be negative"))
	}
	if (c.HTTP.TLSCertFile == "") != (c.HTTP.TLSKeyFile == "") {
		errs = append(errs, errors.New("HTTP_TLS_CERT_FILE and HTTP_TLS_KEY_FILE must be set together"))
	}
	if c.HTTP.ReadTimeout <= 0 || c.HTTP.WriteTimeout <= 0 || c.HTTP.IdleTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT and HTTP_IDLE_TIMEOUT must be positive"))
	}
	if (c.GRPC.TLSCertFile == "") != (c.GRPC.TLSKeyFile == "") {
		errs = append(errs, errors.New("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together"))
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("PUBLIC_RATE_LIMIT_RPS and PUBLIC_RATE_LIMIT_BURST must be positive"))
	}
	return errors.Join(errs...)
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPC.Port)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// loadEnvFile applies the first .env found in the working directory or the
// nearest ancestor holding go.mod.
func loadEnvFile() {
	candidates := []string{".env"}
	if root := findModuleRoot(); root != "" {
		candidates = append(candidates, filepath.Join(root, ".env"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("failed to load env file", "path", path, "error", err)
			continue
		}
		return
	}
}

func findModuleRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
