package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "corpusqa",
		Short:   "corpusqa — grounded question answering over a research paper corpus",
		Version: version,
	}

	root.AddCommand(
		newIngestCmd(),
		newQueryCmd(),
		newArtifactCmd(),
		newEvalCmd(),
		newCorpusCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
