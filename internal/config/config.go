package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var validEnvs = map[string]bool{
	"local": true,
	"alpha": true,
	"beta":  true,
	"prod":  true,
}

// AuthMode selects how callers are identified.
type AuthMode string

const (
	// AuthModeNone serves one shared todo list without authentication.
	AuthModeNone AuthMode = "none"
	// AuthModeDev trusts the X-User-ID header. Local environment only.
	AuthModeDev AuthMode = "dev"
	// AuthModeLocal stores bcrypt password hashes and issues HS256 tokens.
	AuthModeLocal AuthMode = "local"
	// AuthModeCognito delegates accounts to an Amazon Cognito user pool.
	AuthModeCognito AuthMode = "cognito"
)

// Store selects the todo and user persistence backend.
type Store string

const (
	StoreMemory   Store = "memory"
	StorePostgres Store = "postgres"
	StoreMongo    Store = "mongo"
)

const minProductionSecretLength = 32

type Config struct {
	ServerPort    string
	AppEnv        string
	AuthMode      AuthMode
	LogLevel      string
	JWTSecret     string
	JWTTTL        string
	Store         Store
	ClientOrigins []string
	DB            DBConfig
	Mongo         MongoConfig
	Cognito       CognitoConfig
}

func (c Config) ParseLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// TokenTTL returns the lifetime of issued tokens. Call Validate first.
func (c Config) TokenTTL() time.Duration {
	d, _ := time.ParseDuration(c.JWTTTL)
	return d
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("invalid SERVER_PORT %q: %w", c.ServerPort, err)
	}
	if !validEnvs[c.AppEnv] {
		return fmt.Errorf("invalid APP_ENV %q: must be one of local, alpha, beta, prod", c.AppEnv)
	}

	switch c.Store {
	case StoreMemory, StorePostgres, StoreMongo:
	default:
		return fmt.Errorf("invalid STORE %q: must be one of memory, postgres, mongo", c.Store)
	}

	switch c.AuthMode {
	case AuthModeNone:
	case AuthModeDev:
		if c.AppEnv != "local" {
			return fmt.Errorf("AUTH_MODE=dev must not be enabled in %s environment", c.AppEnv)
		}
	case AuthModeLocal:
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE=local")
		}
		if c.AppEnv != "local" && len(c.JWTSecret) < minProductionSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d bytes in %s environment", minProductionSecretLength, c.AppEnv)
		}
		ttl, err := time.ParseDuration(c.JWTTTL)
		if err != nil {
			return fmt.Errorf("invalid JWT_TTL %q: %w", c.JWTTTL, err)
		}
		if ttl <= 0 {
			return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
		}
	case AuthModeCognito:
		if c.Cognito.UserPoolID == "" {
			return fmt.Errorf("COGNITO_USER_POOL_ID is required when AUTH_MODE=cognito")
		}
		if c.Cognito.AppClientID == "" {
			return fmt.Errorf("COGNITO_APP_CLIENT_ID is required when AUTH_MODE=cognito")
		}
	default:
		return fmt.Errorf("invalid AUTH_MODE %q: must be one of none, dev, local, cognito", c.AuthMode)
	}

	if c.Store == StoreMemory && c.AppEnv == "prod" {
		return fmt.Errorf("STORE=memory must not be used in prod environment")
	}
	return nil
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     d.Name,
		RawQuery: fmt.Sprintf("sslmode=%s", url.QueryEscape(d.SSLMode)),
	}
	return u.String()
}

type MongoConfig struct {
	URI      string
	Database string
}

type CognitoConfig struct {
	Region          string
	UserPoolID      string
	AppClientID     string
	AppClientSecret string
}

// LoadDotEnv reads KEY=value pairs from the given files (".env" when none
// are given) into the process environment. Variables already set win, and
// missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

func Load() Config {
	return Config{
		ServerPort:    envOrDefault("SERVER_PORT", "8000"),
		AppEnv:        envOrDefault("APP_ENV", "local"),
		AuthMode:      AuthMode(strings.ToLower(envOrDefault("AUTH_MODE", string(AuthModeLocal)))),
		LogLevel:      envOrDefault("LOG_LEVEL", "info"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTL:        envOrDefault("JWT_TTL", "72h"),
		Store:         Store(strings.ToLower(envOrDefault("STORE", string(StorePostgres)))),
		ClientOrigins: splitList(envOrDefault("CLIENT_ORIGIN", "http://localhost:3000")),
		DB: DBConfig{
			Host:     envOrDefault("DB_HOST", "localhost"),
			Port:     envOrDefault("DB_PORT", "5432"),
			User:     envOrDefault("DB_USER", "todo"),
			Password: envOrDefault("DB_PASSWORD", "todo"),
			Name:     envOrDefault("DB_NAME", "todo"),
			SSLMode:  envOrDefault("DB_SSLMODE", "disable"),
		},
		Mongo: MongoConfig{
			URI:      envOrDefault("MONGO_URI", "mongodb://localhost:27017"),
			Database: envOrDefault("MONGO_DB", "todolist"),
		},
		Cognito: CognitoConfig{
			Region:          envOrDefault("COGNITO_REGION", "ap-northeast-1"),
			UserPoolID:      os.Getenv("COGNITO_USER_POOL_ID"),
			AppClientID:     os.Getenv("COGNITO_APP_CLIENT_ID"),
			AppClientSecret: os.Getenv("COGNITO_APP_CLIENT_SECRET"),
		},
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
