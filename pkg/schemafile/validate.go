package schemafile

import (
	"embed"
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// schemaFS contains the embedded models file JSON schema.
//
//go:embed schema.json
var schemaFS embed.FS

// Validate checks a decoded models file document against the embedded JSON
// schema. Violations are reported with their document paths.
func Validate(document any) error {
	schemaBytes, err := schemaFS.ReadFile("schema.json")
	if err != nil {
		return fmt.Errorf("read embedded schema: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewGoLoader(document),
	)
	if err != nil {
		return fmt.Errorf("validate models file: %w", err)
	}

	if result.Valid() {
		return nil
	}

	violations := make([]error, 0, len(result.Errors()))
	for _, violation := range result.Errors() {
		violations = append(violations, fmt.Errorf("%s: %s", violation.Field(), violation.Description()))
	}

	return fmt.Errorf("invalid models file: %w", errors.Join(violations...))
}
