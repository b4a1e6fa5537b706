package main

import (
	"fmt"

	"github.com/fine-structures/zeosite/libzeo/shells"
	"github.com/fine-structures/zeosite/libzeo/validate"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [structure.xyz]",
	Short: "Print the center shells around the seed site",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		fw, finder, err := loadFramework(&cfg)
		if err != nil {
			return err
		}

		cls, err := shells.Classify(fw, finder, shells.ClassifyOpts{
			Seed:    cfg.ZeoSeed(),
			Degrees: cfg.ZeoDegrees(),
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i, shell := range cls.Shells {
			fmt.Fprintf(out, "neighbours_%d: %d centers %v\n", i, len(shell), shell)
		}
		fmt.Fprintf(out, "%d centers in %d shells over %d levels\n", cls.Shells.NumCenters(), len(cls.Shells), cls.Levels)
		if len(cls.DegreeMismatches) > 0 {
			fmt.Fprintf(out, "degree mismatches at atoms %v\n", cls.DegreeMismatches)
		}
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [structure.xyz]",
	Short: "List atoms whose neighbour count differs from their species' expected degree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		fw, finder, err := loadFramework(&cfg)
		if err != nil {
			return err
		}

		fails, err := validate.Validate(finder, fw, cfg.ZeoDegrees())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, m := range fails {
			fmt.Fprintf(out, "%d,%s,%s,%d,%d\n", m.Atom, m.Symbol, m.Species, m.Actual, m.Expected)
		}
		fmt.Fprintf(out, "%d of %d atoms failed\n", len(fails), fw.NumAtoms())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(validateCmd)
}
