package evaluation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Labels is a hand-made grouping of a folder, by file name.
type Labels struct {
	Folder    string     `yaml:"folder"`
	Client    string     `yaml:"client,omitempty"`
	Groups    [][]string `yaml:"groups"`
	Ungrouped []string   `yaml:"ungrouped,omitempty"`
}

// LoadLabels reads a label file. A file name may appear only once.
func LoadLabels(path string) (*Labels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}

	var labels Labels
	if err := yaml.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("failed to parse labels: %w", err)
	}
	if err := labels.validate(); err != nil {
		return nil, fmt.Errorf("invalid labels %s: %w", path, err)
	}
	return &labels, nil
}

func (l *Labels) validate() error {
	seen := make(map[string]bool)
	check := func(name string) error {
		if name == "" {
			return fmt.Errorf("empty file name")
		}
		if seen[name] {
			return fmt.Errorf("%s is labelled twice", name)
		}
		seen[name] = true
		return nil
	}
	for i, g := range l.Groups {
		if len(g) == 0 {
			return fmt.Errorf("group %d is empty", i+1)
		}
		for _, name := range g {
			if err := check(name); err != nil {
				return err
			}
		}
	}
	for _, name := range l.Ungrouped {
		if err := check(name); err != nil {
			return err
		}
	}
	return nil
}

// assignment maps file name to a group index, -1 for ungrouped.
func (l *Labels) assignment() map[string]int {
	out := make(map[string]int)
	for i, g := range l.Groups {
		for _, name := range g {
			out[name] = i
		}
	}
	for _, name := range l.Ungrouped {
		out[name] = -1
	}
	return out
}
