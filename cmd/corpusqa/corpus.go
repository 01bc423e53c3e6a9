package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCorpusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "List manifest sources and index status",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(configPath, false)
			if err != nil {
				return err
			}
			defer a.close()

			count, err := a.store.Count(context.Background())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SOURCE ID\tYEAR\tTYPE\tTITLE\tAUTHORS")
			for _, s := range a.manifest.Sources {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
					s.SourceID, s.Year, s.Type, s.Title, strings.Join(s.Authors, ", "))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Printf("\n%d sources, %d chunks indexed\n", len(a.manifest.Sources), count)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	return cmd
}
