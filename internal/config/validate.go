package config

import (
	"fmt"
	"strconv"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that is surfaced but does not block.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is the YAML key of the offending field (e.g. "db_driver").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be returned on its own.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static checks over cfg. It does not mutate cfg; callers
// decide whether warnings are fatal.
func Validate(cfg Config) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, msg string) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: msg})
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		if cfg.DSN == "" {
			if strings.TrimSpace(cfg.DBHost) == "" {
				add(SeverityError, "db_host", "db_host must not be empty when dsn is unset")
			}
			if strings.TrimSpace(cfg.DBName) == "" {
				add(SeverityError, "db_name", "db_name must not be empty when dsn is unset")
			}
			if p, err := strconv.Atoi(cfg.DBPort); err != nil || p <= 0 || p > 65535 {
				add(SeverityError, "db_port", fmt.Sprintf("db_port %q is not a valid TCP port", cfg.DBPort))
			}
		}
	case DriverSQLite, DriverMySQL, DriverMSSQL:
		if strings.TrimSpace(cfg.DSN) == "" {
			add(SeverityError, "dsn", fmt.Sprintf("dsn is required for db_driver %q", cfg.DBDriver))
		}
	default:
		add(SeverityError, "db_driver", fmt.Sprintf("unsupported db_driver %q (want postgres, sqlite, mysql or mssql)", cfg.DBDriver))
	}

	if strings.TrimSpace(cfg.DataDir) == "" {
		add(SeverityError, "data_dir", "data_dir must not be empty")
	}
	switch cfg.TableNaming {
	case "stg", "staging":
	default:
		add(SeverityError, "table_naming", fmt.Sprintf("unsupported table_naming %q (want stg or staging)", cfg.TableNaming))
	}
	if cfg.BatchSize <= 0 {
		add(SeverityError, "batch_size", "batch_size must be > 0")
	}
	if cfg.CallTimeout < 0 {
		add(SeverityError, "call_timeout", "call_timeout must not be negative")
	}

	if strings.TrimSpace(cfg.Job) == "" {
		add(SeverityWarning, "job", "job is empty; metrics will be labeled with an empty job")
	}
	switch strings.ToLower(cfg.MetricsBackend) {
	case "", "none":
	case "pushgateway", "prom", "prometheus":
		if strings.TrimSpace(cfg.PushgatewayURL) == "" {
			add(SeverityError, "pushgateway_url", "pushgateway_url is required for metrics_backend pushgateway")
		}
	case "datadog", "dogstatsd":
		if strings.TrimSpace(cfg.DogStatsDAddr) == "" {
			add(SeverityError, "dogstatsd_addr", "dogstatsd_addr is required for metrics_backend datadog")
		}
	default:
		add(SeverityWarning, "metrics_backend", fmt.Sprintf("unknown metrics_backend %q; metrics disabled", cfg.MetricsBackend))
	}
	return issues
}
