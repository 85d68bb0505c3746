package main

import (
	"fmt"

	"github.com/jonathan/bio-generator/internal/catalog"
	"github.com/spf13/cobra"
)

var optionsJSON bool

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the selectable locations and vibes",
	Args:  cobra.NoArgs,
	RunE:  runOptions,
}

func init() {
	optionsCmd.Flags().BoolVar(&optionsJSON, "json", false, "Print the options as JSON")
	rootCmd.AddCommand(optionsCmd)
}

func runOptions(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if optionsJSON {
		return writeJSON(out, catalog.Options())
	}

	fmt.Fprintln(out, "Vibes:")
	for _, v := range catalog.Vibes() {
		fmt.Fprintf(out, "  %s\n", v)
	}
	fmt.Fprintln(out, "Locations:")
	for _, c := range catalog.Countries() {
		fmt.Fprintf(out, "  %s\n", c.Label())
	}
	return nil
}
