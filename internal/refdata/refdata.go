// Package refdata loads the auxiliary reference data shipped alongside the
// statistics: country metadata and the dashboard notice list. Both are passed
// through to the dashboard untransformed.
package refdata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Country is the metadata for one country code.
type Country struct {
	CC         string `json:"cc" yaml:"cc"`
	Title      string `json:"title" yaml:"title"`
	TitleEn    string `json:"title_en,omitempty" yaml:"title_en"`
	Continent  string `json:"continent,omitempty" yaml:"continent"`
	Population int64  `json:"population,omitempty" yaml:"population"`
}

// Notice is one dashboard notice entry.
type Notice struct {
	Message string `json:"message" yaml:"message"`
	Date    string `json:"date,omitempty" yaml:"date"`
	Hidden  bool   `json:"hidden" yaml:"hidden"`
}

// LoadCountries reads country metadata from a JSON or YAML file.
// An empty path yields no countries.
func LoadCountries(path string) ([]Country, error) {
	var out []Country
	if err := load(path, &out); err != nil {
		return nil, fmt.Errorf("load countries: %w", err)
	}
	return out, nil
}

// LoadNotices reads the notice list from a JSON or YAML file.
// An empty path yields no notices.
func LoadNotices(path string) ([]Notice, error) {
	var out []Notice
	if err := load(path, &out); err != nil {
		return nil, fmt.Errorf("load notices: %w", err)
	}
	return out, nil
}

// KeyByCC indexes countries by code; a later entry replaces an earlier one.
func KeyByCC(countries []Country) map[string]Country {
	m := make(map[string]Country, len(countries))
	for _, c := range countries {
		m[c.CC] = c
	}
	return m
}

// VisibleNotices drops notices flagged hidden.
func VisibleNotices(notices []Notice) []Notice {
	out := make([]Notice, 0, len(notices))
	for _, n := range notices {
		if !n.Hidden {
			out = append(out, n)
		}
	}
	return out
}

func load(path string, v any) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return json.Unmarshal(data, v)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	default:
		return errors.New("unsupported reference file type " + ext)
	}
}
