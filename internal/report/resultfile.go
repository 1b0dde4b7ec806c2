// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/venue-overlap/pkg/types"
)

// ResultFile is the on-disk representation of a run and the configuration
// that produced it. A saved run can be rendered again without re-querying.
type ResultFile struct {
	Config  ResultConfig `yaml:"config"`
	Run     types.Run    `yaml:"run"`
	Written time.Time    `yaml:"written"`
}

// ResultConfig stores the query settings that shaped the run.
type ResultConfig struct {
	StartYear int               `yaml:"start_year"`
	EndYear   int               `yaml:"end_year"`
	VenueA    types.VenueConfig `yaml:"venue_a"`
	VenueB    types.VenueConfig `yaml:"venue_b"`
}

// WriteResultFile saves run and the relevant parts of cfg to a YAML file.
func WriteResultFile(path string, cfg types.Config, run types.Run) error {
	rf := ResultFile{
		Config: ResultConfig{
			StartYear: cfg.StartYear,
			EndYear:   cfg.EndYear,
			VenueA:    cfg.VenueA,
			VenueB:    cfg.VenueB,
		},
		Run:     run,
		Written: time.Now().UTC(),
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling result file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResultFile loads a previously saved result file from disk.
func ReadResultFile(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	var rf ResultFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}
	return &rf, nil
}
