package emitter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/toyz/routeplan/internal/models"
	"gopkg.in/yaml.v3"
)

// Format selects the routing table encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat converts a format name to a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// Encode writes the table to w in the requested format
func Encode(w io.Writer, table models.RoutingTable, format Format) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(table); err != nil {
			return fmt.Errorf("failed to encode routing table as json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(table); err != nil {
			return fmt.Errorf("failed to encode routing table as yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
