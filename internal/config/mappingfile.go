package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// mappingFile is the YAML schema for --mapping-file. Every section is
// optional; a present section replaces the corresponding default wholesale.
//
//	axis_map:
//	  0: 4
//	  1: 3
//	invert_axes: [1, 3]
//	aux:
//	  - "axis:4:5:invert"
//	  - "button:0:7"
type mappingFile struct {
	AxisMap    map[int]int `yaml:"axis_map"`
	InvertAxes []int       `yaml:"invert_axes"`
	Aux        []string    `yaml:"aux"`
}

func applyMappingFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("mapping file: %w", err)
	}

	var mf mappingFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return fmt.Errorf("mapping file %s: %w", path, err)
	}

	if mf.AxisMap != nil {
		cfg.AxisMap = mf.AxisMap
	}
	if mf.InvertAxes != nil {
		cfg.InvertAxes = mf.InvertAxes
	}
	// Flags win over the file for AUX entries.
	if len(mf.Aux) > 0 && len(cfg.AuxSpecs) == 0 {
		cfg.AuxSpecs = mf.Aux
	}
	return nil
}
