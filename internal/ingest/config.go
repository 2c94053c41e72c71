package ingest

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dkovac/dno-radar/internal/apperr"
)

// FieldMapping names the keys of one source's response items. Sources
// disagree about field names; this is the only per-source difference the
// generic adapter needs.
type FieldMapping struct {
	Items     string `yaml:"items"`
	Title     string `yaml:"title"`
	URL       string `yaml:"url"`
	Body      string `yaml:"body"`
	Section   string `yaml:"section"`
	Published string `yaml:"published"`
}

type SourceConfig struct {
	Name           string       `yaml:"name"`
	BaseURL        string       `yaml:"baseUrl"`
	Feeds          []string     `yaml:"feeds"`
	TimeoutSeconds int          `yaml:"timeoutSeconds"`
	DateFormat     string       `yaml:"dateFormat"`
	Fields         FieldMapping `yaml:"fields"`
}

type SourcesConfig struct {
	Sources []SourceConfig `yaml:"sources"`
}

func (c *SourcesConfig) Validate() error {
	if len(c.Sources) == 0 {
		return apperr.NewValidation("no sources configured")
	}
	seen := make(map[string]bool, len(c.Sources))
	for i, src := range c.Sources {
		if src.Name == "" {
			return apperr.NewValidation(fmt.Sprintf("source %d: missing name", i))
		}
		if seen[src.Name] {
			return apperr.NewValidation(fmt.Sprintf("duplicate source name %q", src.Name))
		}
		seen[src.Name] = true
		if src.BaseURL == "" {
			return apperr.NewValidation(fmt.Sprintf("source %q: missing baseUrl", src.Name))
		}
		if src.Fields.Items == "" || src.Fields.Title == "" || src.Fields.URL == "" {
			return apperr.NewValidation(fmt.Sprintf("source %q: field mapping needs items, title and url", src.Name))
		}
	}
	return nil
}

type YAMLConfigLoader struct {
	reader io.Reader
}

func NewYAMLConfigLoader(reader io.Reader) *YAMLConfigLoader {
	return &YAMLConfigLoader{reader: reader}
}

func (cl *YAMLConfigLoader) Load(validate bool) (*SourcesConfig, error) {
	decoder := yaml.NewDecoder(cl.reader)
	var config SourcesConfig
	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}
	if validate {
		if err := config.Validate(); err != nil {
			return nil, err
		}
	}
	return &config, nil
}
