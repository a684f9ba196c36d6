package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "toolgate.yaml"

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load returns a Config using the hierarchy: defaults < YAML < ENV-expanded
// YAML values. Missing file or empty document yields Defaults().
func Load() (Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom loads a Config from the given YAML path. A missing file is not an
// error — it yields Defaults(). ${VAR} references in any string value
// (including inside lists and nested maps) are expanded from the process
// environment before the document is unmarshaled into Config; unset
// variables expand to the empty string.
func LoadFrom(path string) (Config, error) {
	cfg := Defaults()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Config{}, fmt.Errorf("parse config yaml: %w", err)
	}
	if doc.Kind == 0 {
		// Empty document.
		return cfg, nil
	}

	expandEnvNode(&doc)

	if err := doc.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	for _, agent := range cfg.Agents {
		applyAgentDefaults(agent)
	}

	return cfg, nil
}

// expandEnvNode walks a YAML node tree, expanding ${VAR} references in every
// scalar string value in place.
func expandEnvNode(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" {
		n.Value = expandEnv(n.Value)
		return
	}
	for _, child := range n.Content {
		expandEnvNode(child)
	}
}

func expandEnv(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}
