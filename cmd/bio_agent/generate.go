package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jonathan/bio-generator/internal/observability"
	"github.com/jonathan/bio-generator/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate three Twitter bios",
	Long:  "Generate three Twitter bios from a job or hobby description, a location and a vibe, and print them.",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

var (
	generateText     string
	generateVibe     string
	generateLocation string
	generateJSON     bool
)

func init() {
	generateCmd.Flags().StringVarP(&generateText, "text", "t", "", "Your job or favorite hobby")
	generateCmd.Flags().StringVar(&generateVibe, "vibe", string(types.VibeProfessional), "Tone: Professional, Casual or Funny")
	generateCmd.Flags().StringVarP(&generateLocation, "location", "l", "", "Country you live in")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "Print the result as JSON")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	req := types.GenerateRequest{
		Text:     generateText,
		Vibe:     generateVibe,
		Location: generateLocation,
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	gen, client, err := newGenerator(ctx, cfg, store, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close LLM client", zap.Error(err))
		}
	}()

	res, err := gen.Generate(ctx, req.FormState())
	if err != nil {
		return fmt.Errorf("failed to generate bios: %w", err)
	}

	if cfg.Verbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintPrompt(gen.Model(), res.Generation.Prompt)
		printer.PrintGeneration(res.Generation, res.Violations)
	}

	out := cmd.OutOrStdout()
	if generateJSON {
		return writeJSON(out, types.GenerateResponse{
			ID:         res.Generation.ID.String(),
			Bios:       res.Generation.Bios,
			Degraded:   res.Generation.Degraded,
			Warning:    res.Warning,
			Violations: res.Violations,
		})
	}

	for _, bio := range res.Generation.Bios {
		fmt.Fprintf(out, "%d. %s\n", bio.Index, bio.Text)
	}
	if res.Warning != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", res.Warning)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
