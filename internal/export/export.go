// Package export serializes session results into textual exchange formats.
package export

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"waitroom/internal/models"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnsupportedFormat is returned for any format other than json or yaml.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Encode renders a result in the requested format. An empty format means json.
func Encode(result models.GoNoGoResult, format string) ([]byte, error) {
	switch normalize(format) {
	case FormatJSON:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode result as json")
		}
		return data, nil
	case FormatYAML:
		data, err := yaml.Marshal(result)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode result as yaml")
		}
		return data, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "format %q", format)
	}
}

// ContentType returns the MIME type for a supported format.
func ContentType(format string) string {
	if normalize(format) == FormatYAML {
		return "application/yaml; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

func normalize(format string) string {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", FormatJSON:
		return FormatJSON
	case FormatYAML, "yml":
		return FormatYAML
	default:
		return f
	}
}
