package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/review-intel/internal/model"
)

var analyzeFormat string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <competitor-id>",
	Short: "Summarize stored reviews for a competitor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, cfg, "analyze")
		if err != nil {
			return err
		}
		defer env.Close()

		a, err := env.Analyzer.Analyze(ctx, args[0])
		if err != nil {
			return err
		}
		return writeAnalysis(cmd.OutOrStdout(), a, analyzeFormat)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(analyzeCmd)
}

// writeAnalysis renders a in the requested format.
func writeAnalysis(w io.Writer, a *model.CompetitorAnalysis, format string) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(a), "encode json")
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(a); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return eris.Wrap(enc.Close(), "encode yaml")
	default:
		return eris.Errorf("unsupported format %q", format)
	}
}
