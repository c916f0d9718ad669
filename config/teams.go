package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const teamKeyPrefix = "team-"

// DefaultTeamKeys maps the event payload keys of the main ministry teams to their team ids.
func DefaultTeamKeys() map[string]string {
	return map[string]string{
		"team-singer": "team-singer",
		"team-music":  "team-music",
		"team-usher":  "team-usher",
		"team-media":  "team-media",
	}
}

// LoadTeamKeys reads the team key mapping from a YAML file of "key: team-id" pairs.
// An empty path returns DefaultTeamKeys.
func LoadTeamKeys(path string) (map[string]string, error) {
	if path == "" {
		return DefaultTeamKeys(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read team keys file: %w", err)
	}
	return ParseTeamKeys(raw)
}

// ParseTeamKeys decodes and validates a YAML team key mapping.
func ParseTeamKeys(raw []byte) (map[string]string, error) {
	keys := map[string]string{}
	if err := yaml.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("decode team keys: %w", err)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("team keys mapping is empty")
	}
	for key, id := range keys {
		if !strings.HasPrefix(key, teamKeyPrefix) {
			return nil, fmt.Errorf("team key %q must start with %q", key, teamKeyPrefix)
		}
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("team key %q has no team id", key)
		}
	}
	return keys, nil
}
