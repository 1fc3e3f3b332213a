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

func validConfig() Config {
	return Config{
		Job: "clean",
		Input: Input{
			Path:      "nutrition.csv",
			Comma:     ",",
			TrimSpace: true,
		},
		Output: Output{Path: "nutrition_preprocessing.csv"},
		Clean:  Clean{DropColumns: []string{"id", "image"}},
		Normalize: Normalize{
			Columns: []string{"calories", "proteins", "fat", "carbohydrate"},
		},
		History: History{Enabled: true, DSN: "nutriprep.db"},
		Metrics: Metrics{Backend: "none"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	if issues := Validate(validConfig()); len(issues) != 0 {
		t.Fatalf("expected no issues, got: %+v", issues)
	}
}

func TestValidate_MissingJob(t *testing.T) {
	c := validConfig()
	c.Job = "  "

	issues := Validate(c)
	if !hasIssue(t, issues, SeverityError, "job", "job must not be empty") {
		t.Fatalf("expected SeverityError for job; got issues: %+v", issues)
	}
}

func TestValidate_EmptyInputPathIsWarning(t *testing.T) {
	c := validConfig()
	c.Input.Path = ""

	issues := Validate(c)
	if !hasIssue(t, issues, SeverityWarning, "input.path", "input.path is empty") {
		t.Fatalf("expected SeverityWarning for input.path; got issues: %+v", issues)
	}
}

func TestValidate_MultiCharacterDelimiter(t *testing.T) {
	c := validConfig()
	c.Input.Comma = ";;"

	issues := Validate(c)
	if !hasIssue(t, issues, SeverityError, "input.comma", "single character") {
		t.Fatalf("expected SeverityError for input.comma; got issues: %+v", issues)
	}
}

func TestValidate_EmptyNAToken(t *testing.T) {
	c := validConfig()
	c.Input.NATokens = []string{"na", " "}

	issues := Validate(c)
	if !hasIssue(t, issues, SeverityWarning, "input.na_tokens[1]", "redundant") {
		t.Fatalf("expected SeverityWarning for input.na_tokens[1]; got issues: %+v", issues)
	}
}

func TestValidate_DuplicateColumns(t *testing.T) {
	c := validConfig()
	c.Clean.DropColumns = []string{"id", "image", "id"}
	c.Normalize.Columns = []string{"calories", "calories"}

	issues := Validate(c)
	if !hasIssue(t, issues, SeverityWarning, "clean.drop_columns[2]", `duplicate column "id"`) {
		t.Fatalf("expected duplicate warning for clean.drop_columns[2]; got issues: %+v", issues)
	}
	if !hasIssue(t, issues, SeverityWarning, "normalize.columns[1]", `duplicate column "calories"`) {
		t.Fatalf("expected duplicate warning for normalize.columns[1]; got issues: %+v", issues)
	}
}

func TestValidate_EmptyColumnName(t *testing.T) {
	c := validConfig()
	c.Normalize.Columns = []string{""}

	issues := Validate(c)
	if !hasIssue(t, issues, SeverityError, "normalize.columns[0]", "must not be empty") {
		t.Fatalf("expected SeverityError for normalize.columns[0]; got issues: %+v", issues)
	}
}

func TestValidate_HistoryEnabledWithoutDSN(t *testing.T) {
	c := validConfig()
	c.History = History{Enabled: true, DSN: ""}

	issues := Validate(c)
	if !hasIssue(t, issues, SeverityError, "history.dsn", "history.dsn is empty") {
		t.Fatalf("expected SeverityError for history.dsn; got issues: %+v", issues)
	}
}

func TestValidate_PrometheusRequiresGatewayURL(t *testing.T) {
	c := validConfig()
	c.Metrics = Metrics{Backend: "prometheus"}

	issues := Validate(c)
	if !hasIssue(t, issues, SeverityError, "metrics.pushgateway_url", "required") {
		t.Fatalf("expected SeverityError for metrics.pushgateway_url; got issues: %+v", issues)
	}
}

func TestValidate_UnknownMetricsBackend(t *testing.T) {
	c := validConfig()
	c.Metrics = Metrics{Backend: "statsd"}

	issues := Validate(c)
	if !hasIssue(t, issues, SeverityWarning, "metrics.backend", "unknown metrics backend") {
		t.Fatalf("expected SeverityWarning for metrics.backend; got issues: %+v", issues)
	}
}

func TestValidate_OutputOverwritesInput(t *testing.T) {
	c := validConfig()
	c.Output.Path = c.Input.Path

	issues := Validate(c)
	if !hasIssue(t, issues, SeverityError, "output.path", "overwrite its input") {
		t.Fatalf("expected SeverityError for output.path; got issues: %+v", issues)
	}
}

func TestValidate_DroppedColumnInNormalizeList(t *testing.T) {
	c := validConfig()
	c.Clean.DropColumns = []string{"id", "calories"}

	issues := Validate(c)
	if !hasIssue(t, issues, SeverityWarning, "normalize.columns[0]", "also in clean.drop_columns") {
		t.Fatalf("expected SeverityWarning for normalize.columns[0]; got issues: %+v", issues)
	}
}
