// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/venue-overlap/pkg/types"
)

// envKeys are the settings that may be set from VENUE_OVERLAP_* variables
// without appearing in a config file.
var envKeys = []string{
	"start_year",
	"end_year",
	"page_size",
	"page_delay",
	"year_delay",
	"parallel",
	"output",
	"http.timeout",
	"http.user_agent",
	"http.base_url",
	"store.driver",
	"store.dsn",
}

func bindEnv(v *viper.Viper) {
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}
}

// decodeConfig overlays the settings held by v onto the defaults. Keys use
// the same names as the YAML result file.
func decodeConfig(v *viper.Viper) (types.Config, error) {
	cfg := types.DefaultConfig()
	err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	})
	if err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// loadConfig returns the effective configuration for cmd: defaults, then
// the config file and environment, then the persistent store flags.
func loadConfig(cmd *cobra.Command) (types.Config, error) {
	cfg, err := decodeConfig(viper.GetViper())
	if err != nil {
		return types.Config{}, err
	}
	if f := cmd.Flags().Lookup("db"); f != nil && f.Changed {
		cfg.Store.DSN = f.Value.String()
	}
	if f := cmd.Flags().Lookup("db-driver"); f != nil && f.Changed {
		cfg.Store.Driver = f.Value.String()
	}
	return cfg, nil
}
