package main

import (
	"fmt"

	"github.com/fine-structures/zeosite/libzeo/config"
	"github.com/fine-structures/zeosite/libzeo/fixture"
	"github.com/fine-structures/zeosite/libzeo/xyz"
	"github.com/fine-structures/zeosite/zeo"
	"github.com/spf13/cobra"
)

var fixtureFlags struct {
	repeat []int
	ring   int
}

var fixtureCmd = &cobra.Command{
	Use:   "fixture <out.xyz>",
	Short: "Write an idealized diamond-net silica framework (or a ring) to run the pipeline on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var fw *zeo.Framework
		if fixtureFlags.ring > 0 {
			fw = fixture.Ring(fixtureFlags.ring)
		} else {
			opts := fixture.CHALike
			for i := 0; i < len(fixtureFlags.repeat) && i < 3; i++ {
				opts.Repeat[i] = fixtureFlags.repeat[i]
			}
			fw = fixture.Diamond(opts)
		}
		if err := xyz.WriteFile(args[0], fw); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d atoms (%d centers) to %s\n",
			fw.NumAtoms(), fw.CountSpecies(zeo.TetrahedralCenter), args[0])
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init-config <run.yaml>",
	Short: "Write the default run config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		return cfg.Write(args[0])
	},
}

func init() {
	fixtureCmd.Flags().IntSliceVar(&fixtureFlags.repeat, "repeat", []int{3, 3, 2}, "supercell repeats along each cell vector")
	fixtureCmd.Flags().IntVar(&fixtureFlags.ring, "ring", 0, "write an n-membered ring instead")
	rootCmd.AddCommand(fixtureCmd)
	rootCmd.AddCommand(configInitCmd)
}
