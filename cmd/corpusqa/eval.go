package main

import (
	"context"
	"fmt"

	"github.com/tahazakir/corpusqa/internal/services/eval"

	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	var (
		configPath string
		replay     bool
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run the evaluation query set and report citation metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(configPath, replay)
			if err != nil {
				return err
			}
			defer a.close()

			runner := eval.NewRunner(a.cfg.Eval, a.pipeline, a.store)
			report, err := runner.Run(context.Background())
			if err != nil {
				return err
			}

			fmt.Printf("Evaluated %d queries (%d successful) in %.1fs\n",
				report.TotalQueries, report.Successful, report.TotalTimeS)
			printMetric := func(name string, v *float64) {
				if v == nil {
					fmt.Printf("  %-20s n/a\n", name)
					return
				}
				fmt.Printf("  %-20s %.3f\n", name, *v)
			}
			printMetric("citation precision", report.Aggregates.AvgCitationPrecision)
			printMetric("groundedness", report.Aggregates.AvgGroundedness)
			printMetric("source recall", report.Aggregates.AvgSourceRecall)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	cmd.Flags().BoolVar(&replay, "replay", false, "replay mode: fail on cache misses instead of calling the model")
	return cmd
}
