package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vrp-search-service/internal/adapters/distance"
	"vrp-search-service/internal/adapters/repositories"
	"vrp-search-service/internal/config"
	"vrp-search-service/internal/ports"
	"vrp-search-service/internal/services"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vrpsolve",
		Short:         "Local search for vehicle routing instances",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.AddCommand(newSolveCmd())
	return rootCmd
}

type solveFlags struct {
	instance     string
	configPath   string
	seed         int64
	starts       int
	construction string
	pairPolicy   string
	ors          bool
}

func newSolveCmd() *cobra.Command {
	var f solveFlags

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve an instance file and print the best solution found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, f)
		},
	}

	solveCmd.Flags().StringVarP(&f.instance, "instance", "i", "", "Instance document (YAML or JSON).")
	solveCmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Search configuration YAML; defaults apply when empty.")
	solveCmd.Flags().Int64Var(&f.seed, "seed", 1, "Seed of the first start; start i uses seed+i.")
	solveCmd.Flags().IntVar(&f.starts, "starts", 0, "Number of independent starts (overrides the config).")
	solveCmd.Flags().StringVar(&f.construction, "construction", "", "Initial solution: random or nearest (overrides the config).")
	solveCmd.Flags().StringVar(&f.pairPolicy, "pair-policy", "", "Route pair policy: first-improvement or until-stable.")
	solveCmd.Flags().BoolVar(&f.ors, "ors", false, "Fetch missing matrices from OpenRouteService (needs ORS_API_KEY).")
	_ = solveCmd.MarkFlagRequired("instance")

	return solveCmd
}

func runSolve(cmd *cobra.Command, f solveFlags) error {
	ctx := cmd.Context()

	cfg, err := config.LoadSearchConfig(f.configPath)
	if err != nil {
		return err
	}
	if f.starts != 0 {
		cfg.Starts = f.starts
	}
	if f.construction != "" {
		cfg.Construction = f.construction
	}
	if f.pairPolicy != "" {
		cfg.PairPolicy = f.pairPolicy
	}

	var matrices ports.MatrixProvider = distance.NewEuclideanProvider()
	if f.ors {
		config.Load()
		matrices, err = distance.NewORSMatrixProvider(config.Get("ORS_API_KEY", ""))
		if err != nil {
			return err
		}
	}

	doc, err := repositories.ReadInstanceFile(f.instance)
	if err != nil {
		return err
	}
	data, err := doc.ProblemData(ctx, matrices)
	if err != nil {
		return err
	}

	out, err := services.SolveData(ctx, data, f.seed, cfg, nil)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	sol := out.Solution
	fmt.Fprint(w, sol.String())
	fmt.Fprintf(w, "distance=%d excess_load=%d time_warp=%d uncollected_prizes=%d\n",
		sol.Distance(), sol.ExcessLoad(), sol.TimeWarp(), sol.UncollectedPrizes())
	fmt.Fprintf(w, "penalised_cost=%d feasible=%t best_start=%d moves=%d\n",
		out.PenalisedCost, sol.IsFeasible(), out.BestStart, out.NumMoves)
	return nil
}
