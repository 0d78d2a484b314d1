package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	parseExpected int
	parseFormat   string
)

var parseCmd = &cobra.Command{
	Use:   "parse <files...>",
	Short: "Parse vendor files and print scored candidates for review",
	Long:  "Parses .txt/.md, .csv/.tsv/.xlsx and image files into vendor candidates. Nothing is written to the store.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		expected, err := expectedFlag(cmd, parseExpected)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, cfg, "parse")
		if err != nil {
			return err
		}
		defer env.Close()

		results := env.Service.ImportFiles(ctx, args, expected)
		if err := writeOutput(cmd.OutOrStdout(), parseFormat, results); err != nil {
			return err
		}

		zap.L().Info("parse complete", zap.Int("files", len(results)))
		return failedFiles(results)
	},
}

func init() {
	parseCmd.Flags().IntVar(&parseExpected, "expected", 0, "number of vendors the source should contain")
	parseCmd.Flags().StringVar(&parseFormat, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(parseCmd)
}
