package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	"GreetingServer/internal/auth"
	"GreetingServer/internal/routes"
)

/*
Configuration comes from the environment only. There are no flags and
no config file apart from the optional route table.

	PORT                    public port, default 3000
	ROUTES_FILE             YAML route table, default built-in table
	ROUTES_RELOAD_INTERVAL  route file poll interval, default 5s, 0 disables
	ADMIN_PORT              admin API port, unset disables the admin API
	ADMIN_JWT_PUBLIC_KEY    PEM RSA key; when set the admin API needs a token
	ADMIN_JWT_ISSUER        default greeting-server
	ADMIN_JWT_AUDIENCE      default greeting-admin
	ADMIN_JWT_ROLE          role the token must carry, default none
	LOG_LEVEL               default info
*/

const (
	DefaultPort           = 3000
	DefaultReloadInterval = 5 * time.Second
	DefaultAdminIssuer    = "greeting-server"
	DefaultAdminAudience  = "greeting-admin"

	ReadTimeout     = 10 * time.Second
	WriteTimeout    = 10 * time.Second
	IdleTimeout     = 60 * time.Second
	ShutdownTimeout = 10 * time.Second
)

type Config struct {
	Port   int
	Routes []routes.Rule

	// RoutesFile is empty when the built-in table is in use.
	RoutesFile     string
	ReloadInterval time.Duration

	AdminEnabled bool
	AdminPort    int

	// AdminAuth.PublicKey is nil when the admin API is unauthenticated.
	AdminAuth auth.JWTConfig

	LogLevel hclog.Level
}

// Default is the configuration used when the environment is empty.
func Default() Config {
	return Config{
		Port:           DefaultPort,
		Routes:         routes.Default(),
		ReloadInterval: DefaultReloadInterval,
		AdminAuth: auth.JWTConfig{
			Issuer:   DefaultAdminIssuer,
			Audience: DefaultAdminAudience,
		},
		LogLevel: hclog.Info,
	}
}

// FromEnv builds a Config from getenv, usually os.Getenv.
// Any malformed value is a startup error.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := getenv("PORT"); v != "" {
		port, err := parsePort(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "PORT")
		}
		cfg.Port = port
	}

	if v := getenv("ROUTES_FILE"); v != "" {
		rules, err := routes.LoadFile(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "ROUTES_FILE")
		}
		cfg.RoutesFile = v
		cfg.Routes = rules
	}

	if v := getenv("ROUTES_RELOAD_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, errors.Errorf("ROUTES_RELOAD_INTERVAL: invalid duration %q", v)
		}
		cfg.ReloadInterval = d
	}

	if v := getenv("ADMIN_PORT"); v != "" {
		port, err := parsePort(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "ADMIN_PORT")
		}
		cfg.AdminEnabled = true
		cfg.AdminPort = port
	}

	if v := getenv("ADMIN_JWT_ISSUER"); v != "" {
		cfg.AdminAuth.Issuer = v
	}
	if v := getenv("ADMIN_JWT_AUDIENCE"); v != "" {
		cfg.AdminAuth.Audience = v
	}
	cfg.AdminAuth.RequiredRole = getenv("ADMIN_JWT_ROLE")

	if v := getenv("ADMIN_JWT_PUBLIC_KEY"); v != "" {
		key, err := auth.LoadPublicKey(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "ADMIN_JWT_PUBLIC_KEY")
		}
		cfg.AdminAuth.PublicKey = key
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		level := hclog.LevelFromString(v)
		if level == hclog.NoLevel {
			return Config{}, errors.Errorf("LOG_LEVEL: unknown level %q", v)
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

// Load reads the process environment.
func Load() (Config, error) {
	return FromEnv(os.Getenv)
}

func parsePort(v string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, errors.Errorf("invalid port %q", v)
	}
	if port < 0 || port > 65535 {
		return 0, errors.Errorf("port %d out of range", port)
	}
	return port, nil
}
