package database

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Config holds database connection settings. The database is optional: it
// is used only when Host is set.
type Config struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
	// ReadyTimeoutSeconds bounds how long startup waits for Postgres.
	ReadyTimeoutSeconds int `yaml:"ready_timeout_seconds" envconfig:"DB_READY_TIMEOUT_SECONDS"`
}

// Enabled reports whether a database is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Host) != ""
}

// Validate checks the fields needed to connect when the database is enabled.
func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	var missing []string
	if c.User == "" {
		missing = append(missing, "database.user")
	}
	if c.Name == "" {
		missing = append(missing, "database.name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	if c.MaxConnections < 0 {
		return fmt.Errorf("database.max_connections must be >= 0")
	}
	return nil
}

func (c Config) port() string {
	if c.Port == "" {
		return "5432"
	}
	return c.Port
}

func (c Config) sslMode() string {
	if c.SSLMode == "" {
		return "disable"
	}
	return c.SSLMode
}

// URL renders the postgres:// form used by lib/pq and golang-migrate.
func (c Config) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.port()),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.sslMode()}}.Encode(),
	}
	return u.String()
}

// Redacted is URL with the password masked, for logs.
func (c Config) Redacted() string {
	u, err := url.Parse(c.URL())
	if err != nil {
		return ""
	}
	return u.Redacted()
}
