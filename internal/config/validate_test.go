package config

import (
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func TestValidate_DefaultsAreClean(t *testing.T) {
	issues := Validate(Default())
	if len(issues) != 0 {
		t.Fatalf("expected no issues for defaults; got %+v", issues)
	}
	if HasErrors(issues) {
		t.Fatalf("HasErrors(nil) = true")
	}
}

func TestValidate_Findings(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		sev    IssueSeverity
		path   string
		msg    string
	}{
		{"unknown driver", func(c *Config) { c.DBDriver = "oracle" }, SeverityError, "db_driver", "unsupported db_driver"},
		{"sqlite needs dsn", func(c *Config) { c.DBDriver = DriverSQLite }, SeverityError, "dsn", "dsn is required"},
		{"bad port", func(c *Config) { c.DBPort = "http" }, SeverityError, "db_port", "not a valid TCP port"},
		{"empty data dir", func(c *Config) { c.DataDir = " " }, SeverityError, "data_dir", "must not be empty"},
		{"bad naming", func(c *Config) { c.TableNaming = "raw" }, SeverityError, "table_naming", "unsupported table_naming"},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }, SeverityError, "batch_size", "must be > 0"},
		{"negative timeout", func(c *Config) { c.CallTimeout = -1 }, SeverityError, "call_timeout", "must not be negative"},
		{"empty job", func(c *Config) { c.Job = "" }, SeverityWarning, "job", "job is empty"},
		{"unknown metrics", func(c *Config) { c.MetricsBackend = "graphite" }, SeverityWarning, "metrics_backend", "metrics disabled"},
		{"pushgateway url", func(c *Config) { c.MetricsBackend = "pushgateway"; c.PushgatewayURL = "" }, SeverityError, "pushgateway_url", "required"},
		{"dogstatsd addr", func(c *Config) { c.MetricsBackend = "datadog"; c.DogStatsDAddr = "" }, SeverityError, "dogstatsd_addr", "required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			issues := Validate(cfg)
			if !hasIssue(t, issues, tc.sev, tc.path, tc.msg) {
				t.Fatalf("expected %s at %s containing %q; got %+v", tc.sev, tc.path, tc.msg, issues)
			}
		})
	}
}

func TestValidate_WarningsDoNotBlock(t *testing.T) {
	cfg := Default()
	cfg.Job = ""
	if HasErrors(Validate(cfg)) {
		t.Fatalf("warning-only config reported errors")
	}
}

func TestIssue_Error(t *testing.T) {
	iss := Issue{Severity: SeverityError, Path: "dsn", Message: "required"}
	if got := iss.Error(); got != "error at dsn: required" {
		t.Fatalf("Error() = %q", got)
	}
}
