package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/sasscope/sasscope/driver"
)

// fileOptions is the YAML shape accepted by --config, letting a batch run
// version an option set alongside the task corpus it scopes instead of
// repeating flags on every invocation.
type fileOptions struct {
	CausalLinks *bool `yaml:"causal_links"`
	Merging     *bool `yaml:"merging"`
	FactBased   *bool `yaml:"fact_based"`
	ForwardPass *bool `yaml:"forward_pass"`
	Loop        *bool `yaml:"loop"`
}

func loadConfig(path string, base driver.Options) (driver.Options, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("scopesas: reading config %s: %w", path, err)
	}
	var fo fileOptions
	if err := yaml.Unmarshal(raw, &fo); err != nil {
		return base, fmt.Errorf("scopesas: parsing config %s: %w", path, err)
	}
	out := base
	if fo.CausalLinks != nil {
		out.CausalLinks = *fo.CausalLinks
	}
	if fo.Merging != nil {
		out.Merging = *fo.Merging
	}
	if fo.FactBased != nil {
		out.FactBased = *fo.FactBased
	}
	if fo.ForwardPass != nil {
		out.ForwardPass = *fo.ForwardPass
	}
	if fo.Loop != nil {
		out.Loop = *fo.Loop
	}
	return out, nil
}
