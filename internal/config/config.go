package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Origins the bundled front-end dev servers run on.
var defaultClientOrigins = []string{
	"http://localhost:5173",
	"http://localhost:5174",
}

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port            string        `env:"PORT" env-default:"5000"`
	GinMode         string        `env:"GIN_MODE" env-default:"release"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type PostgresConfig struct {
	DatabaseURL string `env:"DATABASE_URL"`
	Host        string `env:"PGHOST" env-default:"localhost"`
	Port        string `env:"PGPORT" env-default:"5432"`
	User        string `env:"PGUSER"`
	Password    string `env:"PGPASSWORD"`
	Database    string `env:"PGDATABASE"`
	SSLMode     string `env:"PGSSLMODE" env-default:"disable"`
}

// AuthConfig holds the credential and session settings.
//
// JWTExpiresIn takes a Go duration, a day count ("7d") or bare seconds
// ("3600"). Bare numbers are never milliseconds.
//
// ShowResetTokenForDemo echoes plaintext reset secrets in API responses.
// It exists for local demos only and must stay off in any shared deployment.
type AuthConfig struct {
	JWTSecret                string `env:"JWT_SECRET" env-required:"true"`
	JWTExpiresIn             string `env:"JWT_EXPIRES_IN" env-default:"1d"`
	ResetTokenExpiresMinutes int    `env:"RESET_TOKEN_EXPIRES_MINUTES" env-default:"15"`
	ShowResetTokenForDemo    bool   `env:"SHOW_RESET_TOKEN_FOR_DEMO" env-default:"false"`
	BcryptCost               int    `env:"BCRYPT_COST" env-default:"10"`
}

type CORSConfig struct {
	ClientOrigins []string `env:"CLIENT_ORIGIN" env-separator:","`
}

type LogConfig struct {
	Format string `env:"LOG_FORMAT" env-default:"json"`
	Level  string `env:"LOG_LEVEL" env-default:"info"`
}

// Load reads .env (when present) and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return cfg, nil
}

// LoadPostgres reads only the database settings, for commands that never
// touch credentials.
func LoadPostgres() (PostgresConfig, error) {
	_ = godotenv.Load()

	var cfg PostgresConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return PostgresConfig{}, fmt.Errorf("failed to read postgres config: %w", err)
	}
	return cfg, nil
}

func (c AuthConfig) SessionTTL() (time.Duration, error) {
	return ParseDuration(c.JWTExpiresIn)
}

func (c AuthConfig) ResetTTL() time.Duration {
	return time.Duration(c.ResetTokenExpiresMinutes) * time.Minute
}

// AllowedOrigins returns the dev-server origins plus CLIENT_ORIGIN entries.
func (c CORSConfig) AllowedOrigins() []string {
	origins := append([]string{}, defaultClientOrigins...)
	for _, origin := range c.ClientOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// ParseDuration accepts Go durations ("90m", "24h"), a day suffix ("1d", "7d")
// and bare integers, which are read as seconds.
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty duration")
	}

	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}

	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.ParseFloat(days, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		return time.Duration(n * float64(24*time.Hour)), nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	return d, nil
}
