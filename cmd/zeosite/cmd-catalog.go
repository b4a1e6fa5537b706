package main

import (
	"fmt"
	"strconv"

	"github.com/fine-structures/zeosite/libzeo/catalog"
	"github.com/fine-structures/zeosite/libzeo/xyz"
	"github.com/fine-structures/zeosite/zeo"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var catalogShell int

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect a site catalog written by generate --catalog",
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <catalog-dir>",
	Short: "List stored sites, optionally of one shell only",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.OpenCatalog(catalog.Opts{
			DbPathName: args[0],
			ReadOnly:   true,
		})
		if err != nil {
			return err
		}
		defer cat.Close()

		sel := catalog.SelectAll
		if catalogShell >= 0 {
			sel.MinShell = catalogShell
			sel.MaxShell = catalogShell
		}

		onHit := make(chan *zeo.SiteResult)
		var selErr error
		go func() {
			selErr = cat.Select(sel, onHit)
			close(onHit)
		}()

		out := cmd.OutOrStdout()
		count := 0
		for res := range onHit {
			count++
			fmt.Fprintf(out, "%06d,%d,%d,%d,%d\n", count, res.Key.Shell, res.Key.Center, res.Key.Bridging, res.Terminated.NumAtoms())
		}
		if selErr != nil {
			return selErr
		}
		fmt.Fprintf(out, "%d of %d sites (%d centers)\n", count, cat.NumSites(), cat.NumCenters())
		return nil
	},
}

var catalogGetCmd = &cobra.Command{
	Use:   "get <catalog-dir> <shell> <center> <bridging>",
	Short: "Print the terminated structure of one site as XYZ",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		var idx [3]int
		for i := range idx {
			v, err := strconv.Atoi(args[1+i])
			if err != nil {
				return errors.Wrapf(zeo.ErrBadAtomIndex, "%q", args[1+i])
			}
			idx[i] = v
		}

		cat, err := catalog.OpenCatalog(catalog.Opts{
			DbPathName: args[0],
			ReadOnly:   true,
		})
		if err != nil {
			return err
		}
		defer cat.Close()

		res, err := cat.Get(zeo.SiteKey{Shell: idx[0], Center: idx[1], Bridging: idx[2]})
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(xyz.AppendXYZ(nil, res.Terminated))
		return err
	},
}

func init() {
	catalogShowCmd.Flags().IntVar(&catalogShell, "shell", -1, "only list this shell")
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogGetCmd)
	rootCmd.AddCommand(catalogCmd)
}
