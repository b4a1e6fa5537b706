package main

import (
	"fmt"
	"os"

	"github.com/fine-structures/zeosite/libzeo/catalog"
	"github.com/fine-structures/zeosite/libzeo/generate"
	"github.com/fine-structures/zeosite/libzeo/sitetree"
	"github.com/fine-structures/zeosite/zeo"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var genFlags struct {
	output   string
	catalog  string
	workers  int
	failFast bool
	progress bool
}

var generateCmd = &cobra.Command{
	Use:   "generate [structure.xyz]",
	Short: "Write one substituted and terminated structure per (center, bridging) site",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("output") {
			cfg.Output = genFlags.output
		}
		if flags.Changed("catalog") {
			cfg.Catalog = genFlags.catalog
		}
		if flags.Changed("workers") {
			cfg.Workers = genFlags.workers
		}
		if flags.Changed("fail-fast") {
			cfg.FailFast = genFlags.failFast
		}

		fw, finder, err := loadFramework(&cfg)
		if err != nil {
			return err
		}

		var targets zeo.Materializers
		if len(cfg.Output) > 0 {
			tree, err := sitetree.NewTree(cfg.Output, sitetree.DefaultNaming)
			if err != nil {
				return err
			}
			targets = append(targets, tree)
		}
		if len(cfg.Catalog) > 0 {
			cat, err := catalog.OpenCatalog(catalog.Opts{
				DbPathName: cfg.Catalog,
			})
			if err != nil {
				targets.Close()
				return err
			}
			targets = append(targets, cat)
		}
		if len(targets) == 0 {
			return errors.Wrap(zeo.ErrBadConfig, "neither an output directory nor a catalog is set")
		}

		gen := generate.NewGenerator(finder, targets)
		gen.Mutator.BridgingDegree = cfg.Degrees.Bridging
		gen.Mutator.SubstituteSymbol = cfg.SubstituteSymbol
		gen.Mutator.TerminatorSymbol = cfg.TerminatorSymbol
		gen.Mutator.BondLength = cfg.BondLength

		opts := generate.Opts{
			Seed:     cfg.ZeoSeed(),
			Degrees:  cfg.ZeoDegrees(),
			Workers:  cfg.Workers,
			FailFast: cfg.FailFast,
		}
		if genFlags.progress {
			opts.Progress = os.Stdout
		}

		report, err := gen.Run(cmd.Context(), fw, opts)
		if cerr := targets.Close(); err == nil {
			err = cerr
		}
		if report != nil {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d shells, %d centers, %d of %d sites generated\n",
				len(report.Shells), report.Shells.NumCenters(), report.Generated, report.Scheduled)
			for _, fail := range report.Failures {
				fmt.Fprintf(out, "failed %d/%d/%d: %v\n", fail.Key.Shell, fail.Key.Center, fail.Key.Bridging, fail.Err)
			}
		}
		return err
	},
}

func init() {
	flags := generateCmd.Flags()
	flags.StringVarP(&genFlags.output, "output", "o", "", "site tree root directory")
	flags.StringVar(&genFlags.catalog, "catalog", "", "badger catalog directory")
	flags.IntVarP(&genFlags.workers, "workers", "j", 1, "concurrent site mutations")
	flags.BoolVar(&genFlags.failFast, "fail-fast", false, "stop at the first failed site")
	flags.BoolVar(&genFlags.progress, "progress", false, "print one CSV line per site")
	rootCmd.AddCommand(generateCmd)
}
