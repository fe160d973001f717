// Package casefile decodes case files (YAML or JSON) into finding states.
package casefile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/radassist-mcp-server/internal/domain"
)

// Case is one case file. Exactly the section named by Module is read.
type Case struct {
	Module       domain.Module                `json:"module"`
	Brain        *domain.BrainFindings        `json:"brain,omitempty"`
	LiverBiliary *domain.LiverBiliaryFindings `json:"liver_biliary,omitempty"`
	Lesion       *domain.LesionReportInput    `json:"lesion,omitempty"`
}

// Validate checks that the section for Module is present.
func (c *Case) Validate() error {
	switch c.Module {
	case domain.ModuleBrain:
		if c.Brain == nil {
			return fmt.Errorf("%w: brain section missing", domain.ErrEmptyInput)
		}
	case domain.ModuleLiverBiliary:
		if c.LiverBiliary == nil {
			return fmt.Errorf("%w: liver_biliary section missing", domain.ErrEmptyInput)
		}
	case domain.ModuleLiverLesion:
		if c.Lesion == nil {
			return fmt.Errorf("%w: lesion section missing", domain.ErrEmptyInput)
		}
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownModule, c.Module)
	}
	return nil
}

// DifferentialList is a differential file for normalization.
type DifferentialList struct {
	Mode          domain.WeightMode     `json:"mode"`
	Differentials []domain.Differential `json:"differentials"`
}

// Format is the encoding of a case file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension. Unknown extensions read as YAML,
// which also accepts JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Decode decodes data into v. YAML is converted to JSON first so that the same field names and
// enum token parsing apply to both formats.
func Decode(data []byte, format Format, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.ErrEmptyInput
	}

	if format == FormatYAML {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("invalid YAML: %w", err)
		}
		if doc == nil {
			return domain.ErrEmptyInput
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to convert YAML document: %w", err)
		}
		data = converted
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid case data: %w", err)
	}
	return nil
}

// ReadFile decodes the file at path into v.
func ReadFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := Decode(data, FormatFromPath(path), v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ReadCase reads and validates a case file.
func ReadCase(path string) (*Case, error) {
	var c Case
	if err := ReadFile(path, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// Convert re-decodes a generic JSON-shaped value (such as MCP tool arguments) into dst.
func Convert(src, dst any) error {
	if src == nil {
		return domain.ErrEmptyInput
	}
	data, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("failed to encode input: %w", err)
	}
	return Decode(data, FormatJSON, dst)
}
