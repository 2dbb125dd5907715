//
// Copyright (c) 2024-2026 Oskari Karvonen
//
// All rights reserved.
//

// Command techmap maps a generated benchmark network against the
// built-in cell library and prints the mapping report.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/okarvonen/techmap/cell"
	"github.com/okarvonen/techmap/gen"
	"github.com/okarvonen/techmap/mapper"
	"github.com/okarvonen/techmap/network"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "techmap",
		Short: "technology mapper demo",
		Long: `Maps a generated benchmark network to the built-in ` +
			`standard-cell library and prints area, delay and gate usage.`,

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newMapCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newMapCmd() *cobra.Command {
	var (
		bench          string
		width          int
		requiredTime   float64
		areaFlowRounds int
		exactRounds    int
		switchRounds   int
		verbose        bool
	)

	cmd := &cobra.Command{
		Use:   "map",
		Short: "map a benchmark network",
		RunE: func(cmd *cobra.Command, args []string) error {
			ntk, err := benchmark(bench, width)
			if err != nil {
				return err
			}

			lib := cell.NewLibrary(cell.MiniLibrary(), cell.NewParams())

			ps := mapper.NewParams()
			ps.RequiredTime = requiredTime
			ps.AreaFlowRounds = areaFlowRounds
			ps.ExactAreaRounds = exactRounds
			ps.SwitchingRounds = switchRounds
			ps.Verbose = verbose

			var st mapper.Stats
			res, err := mapper.Map(ntk, lib, ps, &st)
			if err != nil {
				return err
			}

			fmt.Printf("%s: %d nodes, %d inputs, %d outputs\n",
				bench, ntk.Size(), ntk.NumPIs(), ntk.NumPOs())
			fmt.Printf("mapped: %d gates\n", res.NumGates())
			st.Report(os.Stdout)
			return nil
		},
	}

	cmd.Flags().StringVar(&bench, "bench", "adder",
		"benchmark network: adder, comparator, mux, majority")
	cmd.Flags().IntVar(&width, "width", 16, "benchmark bit width")
	cmd.Flags().Float64Var(&requiredTime, "required", 0,
		"target required time (0 = best achievable)")
	cmd.Flags().IntVar(&areaFlowRounds, "area-rounds", 1,
		"number of area-flow rounds")
	cmd.Flags().IntVar(&exactRounds, "exact-rounds", 2,
		"number of exact-area rounds")
	cmd.Flags().IntVar(&switchRounds, "switch-rounds", 0,
		"number of switching-power rounds")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"print per-round statistics")

	return cmd
}

func benchmark(name string, width int) (*network.Network, error) {
	switch name {
	case "adder":
		return gen.Adder(width), nil
	case "comparator":
		return gen.Comparator(width), nil
	case "mux":
		return gen.MuxTree(width), nil
	case "majority":
		return gen.MajorityChain(width), nil
	default:
		return nil, fmt.Errorf("unknown benchmark %q", name)
	}
}
