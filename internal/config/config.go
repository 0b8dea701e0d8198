package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ConfigPathEnv overrides the location of the oktaws configuration
// file.
const ConfigPathEnv = "OKTAWS_CONFIG"

const defaultDurationSeconds = 3600

// Config lists the Okta organizations and the AWS profiles derived
// from them.
type Config struct {
	Organizations []Organization `yaml:"organizations"`
}

// Organization is one Okta org plus the profiles resolved through it.
// Profiles keep their declared order; sequential runs attempt them in
// that order.
type Organization struct {
	Name     string    `yaml:"name"`
	Username string    `yaml:"username"`
	Profiles []Profile `yaml:"profiles"`
}

// Profile names one credentials-file entry and the application/role
// it is minted from.
type Profile struct {
	Name            string `yaml:"name"`
	Application     string `yaml:"application"`
	Role            string `yaml:"role"`
	DurationSeconds int32  `yaml:"duration_seconds"`
}

// Load reads the configuration from OKTAWS_CONFIG if set, otherwise
// ~/.oktaws/oktaws.yaml.
func Load(fs afero.Fs) (*Config, error) {
	configPath := os.Getenv(ConfigPathEnv)
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		configPath = filepath.Join(home, ".oktaws", "oktaws.yaml")
	}

	return LoadFile(fs, configPath)
}

// LoadFile parses and validates the configuration at path.
func LoadFile(fs afero.Fs, configPath string) (*Config, error) {
	data, err := afero.ReadFile(fs, configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", configPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	for i := range c.Organizations {
		org := &c.Organizations[i]
		if org.Name == "" {
			return fmt.Errorf("organization %d has no name", i)
		}
		if org.Username == "" {
			return fmt.Errorf("organization %q has no username", org.Name)
		}
		for j := range org.Profiles {
			profile := &org.Profiles[j]
			if profile.Name == "" {
				return fmt.Errorf("profile %d in organization %q has no name", j, org.Name)
			}
			if profile.Application == "" {
				return fmt.Errorf("profile %q has no application", profile.Name)
			}
			if profile.Role == "" {
				return fmt.Errorf("profile %q has no role", profile.Name)
			}
			if profile.DurationSeconds == 0 {
				profile.DurationSeconds = defaultDurationSeconds
			}
		}
	}
	return nil
}

// MatchOrganizations returns the organizations whose names match the
// glob pattern, in declared order.
func (c *Config) MatchOrganizations(pattern string) ([]Organization, error) {
	var matched []Organization
	for _, org := range c.Organizations {
		ok, err := path.Match(pattern, org.Name)
		if err != nil {
			return nil, fmt.Errorf("invalid organization pattern %q: %w", pattern, err)
		}
		if ok {
			matched = append(matched, org)
		}
	}
	return matched, nil
}

// MatchProfiles returns the organization's profiles whose names match
// the glob pattern, in declared order.
func (o *Organization) MatchProfiles(pattern string) ([]Profile, error) {
	var matched []Profile
	for _, profile := range o.Profiles {
		ok, err := path.Match(pattern, profile.Name)
		if err != nil {
			return nil, fmt.Errorf("invalid profile pattern %q: %w", pattern, err)
		}
		if ok {
			matched = append(matched, profile)
		}
	}
	return matched, nil
}
