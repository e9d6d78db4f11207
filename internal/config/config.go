package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	HTTPAddr       string
	Storage        string
	JWTSecret      string
	LogLevel       string
	LogFile        string
	AllowedOrigins []string
	Cookie         CookieConfig
	DB             DBConfig
}

// CookieConfig shapes the access_token cookie set on register and login.
type CookieConfig struct {
	Domain   string
	Secure   bool
	SameSite string
}

func (c CookieConfig) SameSiteMode() http.SameSite {
	switch c.SameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Bind registers the database flags on fs, defaulting to the environment.
func (c *DBConfig) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Host, "db-host", envOr("POSTGRES_HOST", "localhost"), "Database host")
	fs.StringVar(&c.Port, "db-port", envOr("POSTGRES_PORT", "5432"), "Database port")
	fs.StringVar(&c.User, "db-user", os.Getenv("POSTGRES_USER"), "Database user")
	fs.StringVar(&c.Password, "db-pass", os.Getenv("POSTGRES_PASSWORD"), "Database password")
	fs.StringVar(&c.Name, "db-name", os.Getenv("POSTGRES_DB"), "Database name")
	fs.StringVar(&c.SSLMode, "db-sslmode", envOr("DB_SSLMODE", "disable"), "Database sslmode")
}

func (c DBConfig) Validate() error {
	if c.User == "" || c.Name == "" {
		return errors.New("POSTGRES_USER and POSTGRES_DB are required for postgres storage")
	}
	return nil
}

func (c DBConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// LoadEnv reads a .env file into the environment when one exists.
func LoadEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// Load builds the configuration from flags, falling back to the environment.
// It does not touch .env files; call LoadEnv first.
func Load(name string, args []string) (Config, error) {
	var cfg Config
	var origins string

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.HTTPAddr, "addr", envOr("HTTP_ADDR", "0.0.0.0:8080"), "HTTP listen address")
	fs.StringVar(&cfg.Storage, "storage", envOr("STORAGE", StoragePostgres), "Storage backend (postgres or memory)")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", os.Getenv("JWT_SECRET"), "HMAC secret for access tokens (prefer env)")
	fs.StringVar(&cfg.LogLevel, "log-level", envOr("LOG_LEVEL", "info"), "Log level")
	fs.StringVar(&cfg.LogFile, "log-file", os.Getenv("LOG_FILE"), "Optional rotating log file")
	fs.StringVar(&origins, "cors-origins", envOr("CORS_ORIGINS", "*"), "Comma separated allowed origins")
	fs.StringVar(&cfg.Cookie.Domain, "cookie-domain", os.Getenv("COOKIE_DOMAIN"), "Domain of the access_token cookie")
	fs.BoolVar(&cfg.Cookie.Secure, "cookie-secure", envBool("COOKIE_SECURE", true), "Only send the access_token cookie over HTTPS")
	fs.StringVar(&cfg.Cookie.SameSite, "cookie-samesite", envOr("COOKIE_SAMESITE", "lax"), "SameSite mode of the access_token cookie (lax, strict or none)")
	cfg.DB.Bind(fs)

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.AllowedOrigins = splitList(origins)
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	cfg.Cookie.SameSite = strings.ToLower(strings.TrimSpace(cfg.Cookie.SameSite))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.Storage {
	case StoragePostgres:
		if err := c.DB.Validate(); err != nil {
			errs = append(errs, err)
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage %q", c.Storage))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.Cookie.SameSite {
	case "lax", "strict":
	case "none":
		if !c.Cookie.Secure {
			errs = append(errs, errors.New("COOKIE_SAMESITE=none requires COOKIE_SECURE"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cookie SameSite mode %q", c.Cookie.SameSite))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("HTTP address is required"))
	}
	return errors.Join(errs...)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
