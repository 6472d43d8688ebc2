package quota

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/weddingseo/contentproxy/internal/operation"
)

// Profile is the limit and cost configuration of one operation type.
type Profile struct {
	Daily   int `yaml:"daily" json:"daily"`
	Hourly  int `yaml:"hourly" json:"hourly"`
	Credits int `yaml:"credits" json:"credits"`
}

func (p Profile) validate() error {
	if p.Daily <= 0 || p.Hourly <= 0 || p.Credits <= 0 {
		return fmt.Errorf("daily, hourly and credits must be > 0, got %d/%d/%d", p.Daily, p.Hourly, p.Credits)
	}
	return nil
}

// Profiles maps every operation type to its Profile. The zero value is not usable;
// build one with DefaultProfiles, NewProfiles or LoadProfiles. It is never mutated
// after construction.
type Profiles struct {
	byType map[operation.Type]Profile
}

// DefaultProfiles returns the built-in limits.
func DefaultProfiles() Profiles {
	return Profiles{byType: defaultTable()}
}

func defaultTable() map[operation.Type]Profile {
	return map[operation.Type]Profile{
		operation.TitleOptimization:   {Daily: 20, Hourly: 5, Credits: 1},
		operation.OutlineGeneration:   {Daily: 10, Hourly: 3, Credits: 3},
		operation.ContentGeneration:   {Daily: 50, Hourly: 10, Credits: 2},
		operation.TextImprovement:     {Daily: 30, Hourly: 8, Credits: 1},
		operation.ContentRegeneration: {Daily: 25, Hourly: 6, Credits: 2},
		operation.General:             {Daily: 100, Hourly: 20, Credits: 1},
	}
}

// NewProfiles validates and copies table. Every operation type must be present.
func NewProfiles(table map[operation.Type]Profile) (Profiles, error) {
	byType := make(map[operation.Type]Profile, len(table))
	var errs []error
	for _, op := range operation.All() {
		p, ok := table[op]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: missing profile", op))
			continue
		}
		if err := p.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", op, err))
			continue
		}
		byType[op] = p
	}
	for op := range table {
		if _, known := operation.Parse(string(op)); !known {
			errs = append(errs, fmt.Errorf("%s: unknown operation type", op))
		}
	}
	if len(errs) > 0 {
		return Profiles{}, errors.Join(errs...)
	}
	return Profiles{byType: byType}, nil
}

// LoadProfiles overlays the YAML file at path on top of the defaults. The file is a
// mapping from operation type to {daily, hourly, credits}; omitted types keep their
// defaults. An empty path returns the defaults.
func LoadProfiles(path string) (Profiles, error) {
	if path == "" {
		return DefaultProfiles(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Profiles{}, fmt.Errorf("reading rate limits file: %w", err)
	}

	var overlay map[operation.Type]Profile
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Profiles{}, fmt.Errorf("parsing rate limits file: %w", err)
	}

	table := defaultTable()
	for op, p := range overlay {
		table[op] = p
	}

	profiles, err := NewProfiles(table)
	if err != nil {
		return Profiles{}, fmt.Errorf("invalid rate limits file %s: %w", path, err)
	}
	return profiles, nil
}

// For returns the profile of op, falling back to the general profile.
func (p Profiles) For(op operation.Type) Profile {
	if profile, ok := p.byType[op]; ok {
		return profile
	}
	return p.byType[operation.General]
}
