package validator

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// ValidationError represents a validation failure
type ValidationError struct {
	Kind   string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s snapshot:\n  - %s", e.Kind, strings.Join(e.Errors, "\n  - "))
}

// Schema is the subset of a JSON schema document the validator honours.
type Schema struct {
	Required []string `json:"required"`
}

// Validator checks snapshot trees against the schema files in one
// directory. Schemas are re-read on every call.
type Validator struct {
	securitySchema string
	metricsSchema  string
}

// New creates a validator reading <schemaDir>/security.schema.json and
// <schemaDir>/metrics.schema.json.
func New(schemaDir string) *Validator {
	return &Validator{
		securitySchema: SecuritySchemaPath(schemaDir),
		metricsSchema:  MetricsSchemaPath(schemaDir),
	}
}

// SecuritySchemaPath returns the security schema location in dir.
func SecuritySchemaPath(dir string) string {
	return filepath.Join(dir, "security.schema.json")
}

// MetricsSchemaPath returns the metrics schema location in dir.
func MetricsSchemaPath(dir string) string {
	return filepath.Join(dir, "metrics.schema.json")
}

// LoadSchema reads a schema file. Any read or parse problem yields ok=false.
func LoadSchema(path string) (schema Schema, ok bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, false
	}
	if err := json.Unmarshal(data, &schema); err != nil {
		return Schema{}, false
	}
	return schema, true
}

// ValidateSecurity checks a security snapshot tree. A missing or unreadable
// schema means no contract is enforced and the snapshot passes.
func (v *Validator) ValidateSecurity(doc any) error {
	schema, ok := LoadSchema(v.securitySchema)
	if !ok {
		return nil
	}

	root, ok := doc.(map[string]any)
	if !ok {
		return &ValidationError{Kind: "security", Errors: []string{"snapshot is not an object"}}
	}

	errs := missingRequired(root, schema.Required)

	sev, ok := root["severity"].(map[string]any)
	if !ok {
		errs = append(errs, "Field 'severity' must be an object")
	} else {
		for _, level := range []string{"critical", "high", "medium", "low"} {
			if val, present := sev[level]; present && !isInteger(val) {
				errs = append(errs, fmt.Sprintf("Field 'severity.%s' must be an integer", level))
			}
		}
	}

	for _, section := range []string{"code_scanning", "secret_scanning"} {
		rec, ok := root[section].(map[string]any)
		if !ok {
			errs = append(errs, fmt.Sprintf("Field '%s' must be an object", section))
			continue
		}
		if val, present := rec["open"]; present && !isInteger(val) {
			errs = append(errs, fmt.Sprintf("Field '%s.open' must be an integer", section))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Kind: "security", Errors: errs}
	}
	return nil
}

var integerMetrics = map[string]bool{
	"test_functions":            true,
	"go_files":                  true,
	"loc":                       true,
	"high_complexity_functions": true,
}

// ValidateMetrics checks a metrics snapshot tree. Same schema rules as
// ValidateSecurity.
func (v *Validator) ValidateMetrics(doc any) error {
	schema, ok := LoadSchema(v.metricsSchema)
	if !ok {
		return nil
	}

	root, ok := doc.(map[string]any)
	if !ok {
		return &ValidationError{Kind: "metrics", Errors: []string{"snapshot is not an object"}}
	}

	errs := missingRequired(root, schema.Required)

	for key, val := range root {
		switch {
		case strings.HasSuffix(key, "_percent") && !isNumber(val):
			errs = append(errs, fmt.Sprintf("Field '%s' must be a number", key))
		case integerMetrics[key] && !isInteger(val):
			errs = append(errs, fmt.Sprintf("Field '%s' must be an integer", key))
		case key == "avg_cyclomatic_complexity" && !isNumber(val):
			errs = append(errs, fmt.Sprintf("Field '%s' must be a number", key))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Kind: "metrics", Errors: errs}
	}
	return nil
}

func missingRequired(root map[string]any, required []string) []string {
	var errs []string
	for _, field := range required {
		if _, ok := root[field]; !ok {
			errs = append(errs, fmt.Sprintf("Missing required field: '%s'", field))
		}
	}
	return errs
}

// isInteger accepts json.Number integers, Go integers and integral floats
// (trees decoded without UseNumber). Strings and booleans are rejected.
func isInteger(v any) bool {
	switch n := v.(type) {
	case json.Number:
		_, err := n.Int64()
		return err == nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return n == math.Trunc(n) && !math.IsInf(n, 0)
	default:
		return false
	}
}

func isNumber(v any) bool {
	switch n := v.(type) {
	case json.Number:
		_, err := n.Float64()
		return err == nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}
