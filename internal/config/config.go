// Package config centralizes stageload configuration. Every tunable has a
// documented default and can be overridden, in increasing precedence, by an
// optional YAML file (STAGELOAD_CONFIG), a .env file in the working
// directory, and the process environment.
//
// Typical usage:
//
//	cfg, err := config.Load() // reads .env, STAGELOAD_CONFIG and os.Environ
//
// For tests, prefer FromEnv with a map-backed getenv to stay hermetic:
//
//	getenv := func(k string) string { return testEnv[k] }
//	cfg := config.FromEnv(config.Default(), getenv)
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported sink drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverMSSQL    = "mssql"
)

// Config holds all process configuration. All fields are plain values so the
// struct can be copied freely after construction.
type Config struct {
	// DB describes the destination store. For Postgres the DSN is composed
	// from the discrete parts unless DSN is set; other drivers require DSN.
	DBDriver   string `yaml:"db_driver"`
	DSN        string `yaml:"dsn"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBName     string `yaml:"db_name"`

	// DataDir is the directory holding transactions.csv, users.csv and products.csv.
	DataDir string `yaml:"data_dir"`

	// TableNaming selects relation names: "stg" (stg_users) or "staging" (staging_users).
	TableNaming string `yaml:"table_naming"`

	// DeclareSchema pre-creates the staging relations with their fixed layout.
	// When false the relations are re-created from the data on every load.
	DeclareSchema bool `yaml:"declare_schema"`

	BatchSize int `yaml:"batch_size"` // rows per bulk-write call

	// CallTimeout bounds each blocking sink call; zero disables the deadline.
	CallTimeout time.Duration `yaml:"call_timeout"`

	SchemaFacts  bool `yaml:"schema_facts"`  // read column lists during validation
	StrictCounts bool `yaml:"strict_counts"` // fail validation when counts differ from the source

	// Metrics.
	Job            string `yaml:"job"`
	MetricsBackend string `yaml:"metrics_backend"` // none | pushgateway | datadog
	PushgatewayURL string `yaml:"pushgateway_url"`
	DogStatsDAddr  string `yaml:"dogstatsd_addr"`
}

// Default returns the built-in configuration. The credentials match the
// local docker-compose database used for development.
func Default() Config {
	return Config{
		DBDriver:       DriverPostgres,
		DBUser:         "de_user",
		DBPassword:     "de_password",
		DBHost:         "localhost",
		DBPort:         "5432",
		DBName:         "de_demo",
		DataDir:        "data",
		TableNaming:    "stg",
		DeclareSchema:  false,
		BatchSize:      5000,
		Job:            "stageload",
		MetricsBackend: "none",
		PushgatewayURL: "http://localhost:9091",
		DogStatsDAddr:  "127.0.0.1:8125",
	}
}

// Load is the production entry point: defaults, then the YAML file named by
// STAGELOAD_CONFIG, then .env and the process environment.
func Load() (Config, error) {
	// A missing .env is fine; explicit environment always wins over it.
	_ = godotenv.Load()

	cfg := Default()
	if p := os.Getenv("STAGELOAD_CONFIG"); p != "" {
		var err error
		if cfg, err = LoadFile(p, cfg); err != nil {
			return Config{}, err
		}
	}
	return FromEnv(cfg, os.Getenv), nil
}

// LoadFile overlays the YAML document at path onto base. Keys absent from
// the file keep their base values.
func LoadFile(path string, base Config) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := base
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv overlays environment variables read through getenv onto base.
// Unset or unparseable values keep the base value.
func FromEnv(base Config, getenv func(string) string) Config {
	cfg := base

	str := func(dst *string, k string) {
		if v := getenv(k); v != "" {
			*dst = v
		}
	}
	boolean := func(dst *bool, k string) {
		switch strings.ToLower(strings.TrimSpace(getenv(k))) {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		}
	}

	str(&cfg.DBDriver, "STAGELOAD_DB_DRIVER")
	str(&cfg.DSN, "STAGELOAD_DSN")
	str(&cfg.DBUser, "POSTGRES_USER")
	str(&cfg.DBPassword, "POSTGRES_PASSWORD")
	str(&cfg.DBHost, "POSTGRES_HOST")
	str(&cfg.DBPort, "POSTGRES_PORT")
	str(&cfg.DBName, "POSTGRES_DB")
	str(&cfg.DataDir, "STAGELOAD_DATA_DIR")
	str(&cfg.TableNaming, "STAGELOAD_TABLE_NAMING")
	boolean(&cfg.DeclareSchema, "STAGELOAD_DECLARE_SCHEMA")
	boolean(&cfg.SchemaFacts, "STAGELOAD_SCHEMA_FACTS")
	boolean(&cfg.StrictCounts, "STAGELOAD_STRICT_COUNTS")
	str(&cfg.Job, "STAGELOAD_JOB")
	str(&cfg.MetricsBackend, "METRICS_BACKEND")
	str(&cfg.PushgatewayURL, "PUSHGATEWAY_URL")
	str(&cfg.DogStatsDAddr, "DOGSTATSD_ADDR")

	if v := getenv("STAGELOAD_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BatchSize = n
		}
	}
	if v := getenv("STAGELOAD_CALL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CallTimeout = d
		}
	}
	return cfg
}

// ConnString returns the DSN handed to the storage backend. An explicit DSN
// wins; otherwise a postgres:// URL is composed from the discrete parts with
// user info escaped.
func (c Config) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}
	if c.DBDriver != "" && c.DBDriver != DriverPostgres {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   net.JoinHostPort(c.DBHost, c.DBPort),
		Path:   "/" + c.DBName,
	}
	return u.String()
}

const redactedPassword = "xxxxx"

// kvPassword matches password entries of key=value DSNs: pgx/libpq
// ("password=secret" or "password='se cret'") and ADO-style SQL Server
// ("Password=secret;").
var kvPassword = regexp.MustCompile(`(?i)\b(password|pwd)(\s*=\s*)('(?:[^'\\]|\\.)*'|[^\s;]*)`)

// Redacted returns ConnString with any password replaced, for logging. It
// understands URL DSNs, go-sql-driver/mysql DSNs and key=value DSNs.
func (c Config) Redacted() string {
	s := c.ConnString()
	if s == "" {
		return s
	}
	if c.DBDriver == DriverMySQL {
		if mc, err := mysql.ParseDSN(s); err == nil {
			if mc.Passwd != "" {
				mc.Passwd = redactedPassword
			}
			return mc.FormatDSN()
		}
	}
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), redactedPassword)
		}
		q := u.Query()
		for k := range q {
			if strings.EqualFold(k, "password") {
				q.Set(k, redactedPassword)
				u.RawQuery = q.Encode()
			}
		}
		return u.String()
	}
	return kvPassword.ReplaceAllString(s, "${1}${2}"+redactedPassword)
}

// SourcePath resolves a dataset file name against DataDir.
func (c Config) SourcePath(file string) string {
	return filepath.Join(c.DataDir, file)
}
