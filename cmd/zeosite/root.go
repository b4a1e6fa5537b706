package main

import (
	"github.com/fine-structures/zeosite/libzeo/config"
	"github.com/fine-structures/zeosite/libzeo/periodic"
	"github.com/fine-structures/zeosite/libzeo/xyz"
	"github.com/fine-structures/zeosite/zeo"
	"github.com/spf13/cobra"
)

var (
	configPath string
	cutoff     float64
	seed       zeo.Seed
)

var rootCmd = &cobra.Command{
	Use:          "zeosite",
	Short:        "Enumerate and generate acid sites of a periodic tetrahedral framework",
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML run config (defaults apply when omitted)")
	flags.Float64Var(&cutoff, "cutoff", zeo.DefaultCutoff, "bond cutoff distance")
	flags.IntVar(&seed.Center, "seed-center", 0, "index of the seed center")
	flags.IntVar(&seed.Bridging, "seed-bridging", 0, "index of the seed bridging atom")
	flags.IntVar(&seed.Terminator, "seed-terminator", 0, "index of the seed terminator (past the atom count if absent)")
}

// loadConfig reads --config (or the defaults) and applies any flags given explicitly.
// A positional structure path overrides the config's structure.
func loadConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg := config.Default()
	if len(configPath) > 0 {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("cutoff") {
		cfg.Cutoff = cutoff
	}
	if flags.Changed("seed-center") {
		cfg.Seed.Center = seed.Center
	}
	if flags.Changed("seed-bridging") {
		cfg.Seed.Bridging = seed.Bridging
	}
	if flags.Changed("seed-terminator") {
		cfg.Seed.Terminator = seed.Terminator
	}
	if len(args) > 0 {
		cfg.Structure = args[0]
	}
	return cfg, cfg.Validate()
}

// loadFramework reads the configured structure and returns it with a finder at the configured cutoff.
func loadFramework(cfg *config.Config) (*zeo.Framework, *periodic.Finder, error) {
	tbl, err := cfg.SpeciesTable()
	if err != nil {
		return nil, nil, err
	}
	fw, err := xyz.ReadFile(cfg.Structure, tbl)
	if err != nil {
		return nil, nil, err
	}
	return fw, periodic.NewFinder(cfg.Cutoff), nil
}
