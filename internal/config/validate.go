// This file adds a lightweight linter/validator for Config values. It
// performs static checks over a decoded Config and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Config.
//
// Path is a dotted path into the config (e.g. "input.comma",
// "metrics.pushgateway_url"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation of a Config. It does not mutate the
// config; callers decide whether warnings are fatal.
func Validate(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels metrics and run log entries",
		})
	}

	issues = append(issues, validateInput(c.Input)...)
	issues = append(issues, validateColumnList("clean.drop_columns", c.Clean.DropColumns)...)
	issues = append(issues, validateColumnList("normalize.columns", c.Normalize.Columns)...)
	issues = append(issues, validateHistory(c.History)...)
	issues = append(issues, validateMetrics(c.Metrics)...)

	if c.Output.Path != "" && c.Output.Path == c.Input.Path {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.path",
			Message:  "output.path equals input.path; the run would overwrite its input",
		})
	}

	dropped := make(map[string]struct{}, len(c.Clean.DropColumns))
	for _, name := range c.Clean.DropColumns {
		dropped[name] = struct{}{}
	}
	for i, name := range c.Normalize.Columns {
		if _, ok := dropped[name]; ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("normalize.columns[%d]", i),
				Message:  fmt.Sprintf("column %q is also in clean.drop_columns and is removed before scaling", name),
			})
		}
	}

	return issues
}

func validateInput(in Input) []Issue {
	var issues []Issue

	if strings.TrimSpace(in.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "input.path",
			Message:  "input.path is empty; the run command will use its argument or the default dataset name",
		})
	}
	if n := len([]rune(in.Comma)); n > 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "input.comma",
			Message:  fmt.Sprintf("delimiter %q must be a single character", in.Comma),
		})
	}
	for i, tok := range in.NATokens {
		if strings.TrimSpace(tok) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("input.na_tokens[%d]", i),
				Message:  "empty token is redundant; empty cells always count as missing",
			})
		}
	}

	return issues
}

func validateColumnList(path string, cols []string) []Issue {
	var issues []Issue

	seen := make(map[string]struct{}, len(cols))
	for i, name := range cols {
		if strings.TrimSpace(name) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("%s[%d]", path, i),
				Message:  "column name must not be empty",
			})
			continue
		}
		if _, ok := seen[name]; ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("%s[%d]", path, i),
				Message:  fmt.Sprintf("duplicate column %q", name),
			})
		}
		seen[name] = struct{}{}
	}

	return issues
}

func validateHistory(h History) []Issue {
	var issues []Issue

	if h.Enabled && strings.TrimSpace(h.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "history.dsn",
			Message:  "history is enabled but history.dsn is empty",
		})
	}

	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	known := map[string]struct{}{
		"":           {},
		"none":       {},
		"prometheus": {},
	}
	if _, ok := known[m.Backend]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be disabled", m.Backend),
		})
	}
	if m.Backend == "prometheus" && strings.TrimSpace(m.PushgatewayURL) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.pushgateway_url",
			Message:  "pushgateway URL is required when metrics.backend is prometheus",
		})
	}

	return issues
}
