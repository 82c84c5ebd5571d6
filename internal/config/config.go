// Package config defines the data structures related to configuration and
// includes functions for loading, checking and printing the config.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/sixsigma-portal/pkg/constants"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Configuration holds all configuration for sixsigma-portal.
type Configuration struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Notify  NotifyConfig  `yaml:"notify,omitempty"`
	Export  ExportConfig  `yaml:"export,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// ServerConfig defines runtime parameters for the HTTP server.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MaxFormSize     string        `yaml:"maxFormSize"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	formSizeBytes   int64
}

// StorageConfig selects and configures the record store backend.
type StorageConfig struct {
	Driver  string        `yaml:"driver"` // memory, bolt, redis, sql
	Path    string        `yaml:"path,omitempty"`
	Bucket  string        `yaml:"bucket,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
	Redis   RedisConfig   `yaml:"redis,omitempty"`
	SQL     SQLConfig     `yaml:"sql,omitempty"`
}

// RedisConfig holds redis connection options.
type RedisConfig struct {
	Address   string `yaml:"address,omitempty"`
	Password  string `yaml:"password,omitempty"`
	DB        int    `yaml:"db,omitempty"`
	KeyPrefix string `yaml:"keyPrefix,omitempty"`
}

// SQLConfig holds the postgres connection string and table name.
type SQLConfig struct {
	DSN   string `yaml:"dsn,omitempty"`
	Table string `yaml:"table,omitempty"`
}

// SessionConfig controls the employee session cookie.
type SessionConfig struct {
	Secret     string        `yaml:"secret,omitempty"`
	CookieName string        `yaml:"cookieName"`
	TTL        time.Duration `yaml:"ttl"`
	Secure     bool          `yaml:"secure"`
	generated  bool
}

// NotifyConfig holds the SMTP settings for new-application e-mails.
type NotifyConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	From     string `yaml:"from,omitempty"`
	To       string `yaml:"to,omitempty"`
}

// ExportConfig schedules periodic spreadsheet snapshots. An empty schedule
// disables them.
type ExportConfig struct {
	Schedule    string   `yaml:"schedule,omitempty"`
	Directory   string   `yaml:"directory,omitempty"`
	Collections []string `yaml:"collections,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Configuration {
	return &Configuration{
		Server: ServerConfig{
			Address:         constants.DefaultServerAddress,
			MaxFormSize:     fmt.Sprintf("%d", constants.DefaultMaxFormSizeBytes),
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			formSizeBytes:   constants.DefaultMaxFormSizeBytes,
		},
		Storage: StorageConfig{
			Driver:  constants.StorageMemory,
			Bucket:  constants.DefaultBoltBucket,
			Timeout: 5 * time.Second,
			SQL:     SQLConfig{Table: "storage_items"},
		},
		Session: SessionConfig{
			CookieName: constants.DefaultSessionCookie,
			TTL:        12 * time.Hour,
		},
		Notify: NotifyConfig{
			Port: 587,
			To:   constants.CompanyEmail,
		},
		Export: ExportConfig{
			Directory:   "exports",
			Collections: append([]string(nil), constants.Collections...),
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("server.maxFormSize", d.Server.MaxFormSize)
	v.SetDefault("server.readTimeout", d.Server.ReadTimeout)
	v.SetDefault("server.writeTimeout", d.Server.WriteTimeout)
	v.SetDefault("server.idleTimeout", d.Server.IdleTimeout)
	v.SetDefault("server.shutdownTimeout", d.Server.ShutdownTimeout)

	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.bucket", d.Storage.Bucket)
	v.SetDefault("storage.timeout", d.Storage.Timeout)
	v.SetDefault("storage.redis.address", "")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.keyPrefix", "")
	v.SetDefault("storage.sql.dsn", "")
	v.SetDefault("storage.sql.table", d.Storage.SQL.Table)

	v.SetDefault("session.secret", "")
	v.SetDefault("session.cookieName", d.Session.CookieName)
	v.SetDefault("session.ttl", d.Session.TTL)
	v.SetDefault("session.secure", false)

	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")

	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.host", "")
	v.SetDefault("notify.port", d.Notify.Port)
	v.SetDefault("notify.username", "")
	v.SetDefault("notify.password", "")
	v.SetDefault("notify.from", "")
	v.SetDefault("notify.to", d.Notify.To)

	v.SetDefault("export.schedule", "")
	v.SetDefault("export.directory", d.Export.Directory)
	v.SetDefault("export.collections", d.Export.Collections)
}

// LoadConfiguration loads the YAML-formatted configuration at configPath.
// Every key can be overridden from the environment, e.g.
// SIXSIGMA_STORAGE_DRIVER=bolt. A missing file yields the defaults.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file, %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file, %w", err)
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := configuration.normalize(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

func (c *Configuration) normalize() error {
	if err := c.Server.normalize(); err != nil {
		return err
	}

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = constants.StorageMemory
	}
	if c.Storage.Bucket == "" {
		c.Storage.Bucket = constants.DefaultBoltBucket
	}
	if c.Storage.SQL.Table == "" {
		c.Storage.SQL.Table = "storage_items"
	}

	if c.Session.CookieName == "" {
		c.Session.CookieName = constants.DefaultSessionCookie
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = 12 * time.Hour
	}
	if c.Session.Secret == "" {
		secret, err := randomSecret()
		if err != nil {
			return fmt.Errorf("generate session secret: %w", err)
		}
		c.Session.Secret = secret
		c.Session.generated = true
	}

	if len(c.Export.Collections) == 0 {
		c.Export.Collections = append([]string(nil), constants.Collections...)
	}
	return nil
}

func (s *ServerConfig) normalize() error {
	if s.Address == "" {
		s.Address = constants.DefaultServerAddress
	}

	sizeStr := strings.TrimSpace(s.MaxFormSize)
	if sizeStr == "" {
		s.formSizeBytes = constants.DefaultMaxFormSizeBytes
		s.MaxFormSize = fmt.Sprintf("%d", constants.DefaultMaxFormSizeBytes)
		return nil
	}

	bytes, err := ParseSize(sizeStr)
	if err != nil {
		return err
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxFormSizeBytes
	}
	s.formSizeBytes = bytes
	return nil
}

// FormSizeBytes returns the configured maximum form body size in bytes.
func (s ServerConfig) FormSizeBytes() int64 {
	if s.formSizeBytes <= 0 {
		return constants.DefaultMaxFormSizeBytes
	}
	return s.formSizeBytes
}

// SecretGenerated reports whether the session secret was generated at load
// time, in which case sessions do not survive a restart.
func (s SessionConfig) SecretGenerated() bool {
	return s.generated
}

// Validate checks the configuration. Problems that prevent startup are
// returned as an error; everything else is returned as warnings.
func (c *Configuration) Validate() ([]string, error) {
	var warnings []string
	var problems []string

	switch c.Storage.Driver {
	case constants.StorageMemory:
		warnings = append(warnings, "storage driver is memory; records are lost on restart")
	case constants.StorageBolt:
		if strings.TrimSpace(c.Storage.Path) == "" {
			problems = append(problems, "storage.path is required for the bolt driver")
		}
	case constants.StorageRedis:
		if strings.TrimSpace(c.Storage.Redis.Address) == "" {
			problems = append(problems, "storage.redis.address is required for the redis driver")
		}
	case constants.StorageSQL:
		if strings.TrimSpace(c.Storage.SQL.DSN) == "" {
			problems = append(problems, "storage.sql.dsn is required for the sql driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown storage driver %q", c.Storage.Driver))
	}

	if c.Session.generated {
		warnings = append(warnings, "session.secret is not set; a random secret was generated and sessions end on restart")
	}
	if !c.Session.Secure {
		warnings = append(warnings, "session cookie is not marked Secure; serve behind TLS in production")
	}

	if c.Notify.Enabled {
		if c.Notify.Host == "" {
			problems = append(problems, "notify.host is required when notifications are enabled")
		}
		if c.Notify.To == "" {
			problems = append(problems, "notify.to is required when notifications are enabled")
		}
	}

	if c.Export.Schedule != "" {
		if _, err := cron.ParseStandard(c.Export.Schedule); err != nil {
			problems = append(problems, fmt.Sprintf("export.schedule %q: %v", c.Export.Schedule, err))
		}
		for _, name := range c.Export.Collections {
			if !isCollection(name) {
				problems = append(problems, fmt.Sprintf("export.collections: unknown collection %q", name))
			}
		}
	}

	if len(problems) > 0 {
		return warnings, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return warnings, nil
}

// YAML renders the effective configuration with secrets redacted.
func (c *Configuration) YAML() ([]byte, error) {
	redacted := *c
	redacted.Session.Secret = redact(c.Session.Secret)
	redacted.Storage.Redis.Password = redact(c.Storage.Redis.Password)
	redacted.Storage.SQL.DSN = redact(c.Storage.SQL.DSN)
	redacted.Notify.Password = redact(c.Notify.Password)

	data, err := yaml.Marshal(&redacted)
	if err != nil {
		return nil, fmt.Errorf("failed to render configuration: %w", err)
	}
	return data, nil
}

func redact(value string) string {
	if value == "" {
		return ""
	}
	return "REDACTED"
}

func isCollection(name string) bool {
	for _, known := range constants.Collections {
		if name == known {
			return true
		}
	}
	return false
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
