// Package config resolves server settings from command-line flags, the
// environment and defaults. A .env file loaded at startup feeds the
// environment, so every flag can also be set there.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paularlott/cli"

	"github.com/ducttapeprodigy/boilerplate/internal/auth"
	"github.com/ducttapeprodigy/boilerplate/internal/fixture"
	"github.com/ducttapeprodigy/boilerplate/internal/storage"
	"github.com/ducttapeprodigy/boilerplate/internal/worker"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "APP_"

const (
	DefaultListenAddr = ":8000"
	DefaultSecretKey  = "your-secret-key-change-in-production"
	DefaultMaxRecords = 100000

	DefaultFixtureOutput = "hierarchical_data.json"
)

// Config holds the server configuration
type Config struct {
	ListenAddr     string
	SecretKey      string
	TokenTTL       time.Duration
	StorageBackend string
	CORSOrigin     string
	MCPToken       string
	MetricsToken   string

	SeedDemoUser  bool
	AdminPassword string

	FixtureSchedule string
	FixtureOutput   string
	FixtureRoots    int
	FixtureDepth    int
	FixtureChildren int
	FixtureSeed     int64
	MaxRecords      int
}

// Getter reads resolved flag values; *cli.Command satisfies it
type Getter interface {
	GetString(name string) string
	GetInt(name string) int
	GetBool(name string) bool
}

func envVar(name string) []string {
	return []string{EnvPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))}
}

// GetFlags returns the server flags. Each flag can also be set through
// APP_<NAME> in the environment.
func GetFlags() []cli.Flag {
	defaults := fixture.DefaultParams()
	return []cli.Flag{
		&cli.StringFlag{Name: "listen-addr", Usage: "Address to listen on", DefaultValue: DefaultListenAddr, EnvVars: envVar("listen-addr")},
		&cli.StringFlag{Name: "secret-key", Usage: "HMAC key for access tokens (at least 32 characters)", DefaultValue: DefaultSecretKey, EnvVars: envVar("secret-key")},
		&cli.IntFlag{Name: "token-ttl-minutes", Usage: "Access token lifetime in minutes", DefaultValue: 30, EnvVars: envVar("token-ttl-minutes")},
		&cli.StringFlag{Name: "storage-backend", Usage: "Storage backend (memory, sqlite)", DefaultValue: storage.BackendMemory, EnvVars: envVar("storage-backend")},
		&cli.StringFlag{Name: "cors-origin", Usage: "Allowed CORS origin", DefaultValue: "*", EnvVars: envVar("cors-origin")},
		&cli.StringFlag{Name: "mcp-token", Usage: "Bearer token required on /mcp (empty disables auth)", EnvVars: envVar("mcp-token")},
		&cli.StringFlag{Name: "metrics-token", Usage: "Bearer token required on /metrics (empty disables auth)", EnvVars: envVar("metrics-token")},
		&cli.BoolFlag{Name: "seed-demo-user", Usage: "Create the testuser demo account at startup", DefaultValue: true, EnvVars: envVar("seed-demo-user")},
		&cli.StringFlag{Name: "admin-password", Usage: "Create the admin account with this password at startup", EnvVars: envVar("admin-password")},
		&cli.StringFlag{Name: "fixture-schedule", Usage: "Cron schedule for refreshing the fixture file (empty disables)", EnvVars: envVar("fixture-schedule")},
		&cli.StringFlag{Name: "fixture-output", Usage: "File written by the fixture refresh job", DefaultValue: DefaultFixtureOutput, EnvVars: envVar("fixture-output")},
		&cli.IntFlag{Name: "fixture-roots", Usage: "Roots per scheduled fixture set", DefaultValue: defaults.Roots, EnvVars: envVar("fixture-roots")},
		&cli.IntFlag{Name: "fixture-depth", Usage: "Depth of scheduled fixture sets", DefaultValue: defaults.Depth, EnvVars: envVar("fixture-depth")},
		&cli.IntFlag{Name: "fixture-children", Usage: "Maximum children per node in scheduled fixture sets", DefaultValue: defaults.Children, EnvVars: envVar("fixture-children")},
		&cli.IntFlag{Name: "fixture-seed", Usage: "Seed for scheduled fixture sets (0 for random)", EnvVars: envVar("fixture-seed")},
		&cli.IntFlag{Name: "max-records", Usage: "Largest forest a single request may generate (0 for no cap)", DefaultValue: DefaultMaxRecords, EnvVars: envVar("max-records")},
	}
}

// Load reads every server flag through g and validates the result
func Load(g Getter) (*Config, error) {
	cfg := &Config{
		ListenAddr:      g.GetString("listen-addr"),
		SecretKey:       g.GetString("secret-key"),
		TokenTTL:        time.Duration(g.GetInt("token-ttl-minutes")) * time.Minute,
		StorageBackend:  strings.ToLower(g.GetString("storage-backend")),
		CORSOrigin:      g.GetString("cors-origin"),
		MCPToken:        g.GetString("mcp-token"),
		MetricsToken:    g.GetString("metrics-token"),
		SeedDemoUser:    g.GetBool("seed-demo-user"),
		AdminPassword:   g.GetString("admin-password"),
		FixtureSchedule: strings.TrimSpace(g.GetString("fixture-schedule")),
		FixtureOutput:   g.GetString("fixture-output"),
		FixtureRoots:    g.GetInt("fixture-roots"),
		FixtureDepth:    g.GetInt("fixture-depth"),
		FixtureChildren: g.GetInt("fixture-children"),
		FixtureSeed:     int64(g.GetInt("fixture-seed")),
		MaxRecords:      g.GetInt("max-records"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error

	if c.ListenAddr == "" {
		errs = append(errs, errors.New("listen-addr: required"))
	}
	if len(c.SecretKey) < auth.MinSecretLength {
		errs = append(errs, fmt.Errorf("secret-key: must be at least %d characters", auth.MinSecretLength))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token-ttl-minutes: must be positive"))
	}
	switch c.StorageBackend {
	case storage.BackendMemory, storage.BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("storage-backend: unknown backend %q", c.StorageBackend))
	}
	if c.MaxRecords < 0 {
		errs = append(errs, errors.New("max-records: must be >= 0"))
	}
	if err := c.FixtureParams().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("fixture: %w", err))
	}
	if c.FixtureSchedule != "" {
		if err := worker.ParseSpec(c.FixtureSchedule); err != nil {
			errs = append(errs, fmt.Errorf("fixture-schedule: %w", err))
		}
		if c.FixtureOutput == "" {
			errs = append(errs, errors.New("fixture-output: required when a schedule is set"))
		}
	}

	return errors.Join(errs...)
}

// FixtureParams returns the parameters of the scheduled refresh job
func (c *Config) FixtureParams() fixture.Params {
	p := fixture.Params{Roots: c.FixtureRoots, Depth: c.FixtureDepth, Children: c.FixtureChildren}
	if c.FixtureSeed != 0 {
		p = p.WithSeed(c.FixtureSeed)
	}
	return p
}

// IsMCPAuthEnabled reports whether /mcp requires a bearer token
func (c *Config) IsMCPAuthEnabled() bool {
	return c.MCPToken != ""
}

// UsesDefaultSecret reports whether the shipped placeholder key is in use
func (c *Config) UsesDefaultSecret() bool {
	return c.SecretKey == DefaultSecretKey
}
